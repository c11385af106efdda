package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/common-nighthawk/go-figure"
	bannercolor "github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/landwatch/landwatch-analysis-api/internal/analysis"
	"github.com/landwatch/landwatch-analysis-api/internal/cache"
	"github.com/landwatch/landwatch-analysis-api/internal/geometry"
	"github.com/landwatch/landwatch-analysis-api/internal/landcover"
	"github.com/landwatch/landwatch-analysis-api/internal/notification"
	"github.com/landwatch/landwatch-analysis-api/internal/properties"
	"github.com/landwatch/landwatch-analysis-api/internal/provider"
	"github.com/landwatch/landwatch-analysis-api/internal/raster"
	"github.com/landwatch/landwatch-analysis-api/internal/render"
	"github.com/landwatch/landwatch-analysis-api/internal/temporal"
	"github.com/landwatch/landwatch-analysis-api/internal/zonal"
	"github.com/landwatch/landwatch-analysis-api/output"
)

func printBanner() {
	figure1 := figure.NewFigure("LandWatch", "isometric1", true)
	bannercolor.Green(figure1.String())
	fmt.Println()
}

type app struct {
	orchestrator *analysis.Orchestrator
	resultCache  *cache.FileCache[*zonal.Result]
	reader       *bufio.Reader
}

func initCLI(orchestrator *analysis.Orchestrator) {
	defer func() {
		if r := recover(); r != nil {
			pc, file, line, ok := runtime.Caller(3)
			var location string
			if ok {
				fn := runtime.FuncForPC(pc)
				location = fmt.Sprintf("%s:%d in %s", file, line, fn.Name())
			} else {
				location = "Unknown location"
			}

			fmt.Printf("\n\033[31mPANIC: %v\033[0m\n", r)
			fmt.Printf("\033[31mLocation: %s\033[0m\n", location)
			fmt.Printf("\033[31mExiting...\033[0m\n")

			stack := debug.Stack()
			errMessage := fmt.Sprintf("LandWatch CLI panic:\n\n%v\n\nLocation: %s\n\nStack trace:\n%s", r, location, stack)
			if err := notification.SendErrorNotification(errMessage); err != nil {
				fmt.Printf("\033[31mFailed to send notification: %s\033[0m\n", err.Error())
			}
		}
	}()
	printBanner()

	a := &app{
		orchestrator: orchestrator,
		resultCache:  cache.NewFileCache[*zonal.Result]("results"),
		reader:       bufio.NewReader(os.Stdin),
	}

	for {
		fmt.Println("\033[34m===================\033[0m")
		fmt.Println("\033[34m1. Vegetation health (NDVI) for a region\033[0m")
		fmt.Println("\033[34m2. IGBP land cover breakdown\033[0m")
		fmt.Println("\033[34m3. ESA WorldCover breakdown\033[0m")
		fmt.Println("\033[34m4. Combined NDVI + land cover\033[0m")
		fmt.Println("\033[34m5. Yearly NDVI trend\033[0m")
		fmt.Println("\033[34m6. List available regions\033[0m")
		fmt.Println("\033[34m7. Exit\033[0m")
		fmt.Println("\033[34mEnter your choice:\033[0m")

		var choice int
		if _, err := fmt.Scan(&choice); err != nil {
			fmt.Printf("\n\033[31mInvalid input. Please enter a number.\033[0m\n")
			fmt.Scanln()
			continue
		}

		switch choice {
		case 1:
			a.runSingle(analysis.KindNDVI)
		case 2:
			a.runSingle(analysis.KindIGBP)
		case 3:
			a.runSingle(analysis.KindWorldCover)
		case 4:
			a.runCombined()
		case 5:
			a.runTrend()
		case 6:
			listRegions()
		case 7:
			println("Exiting...")
			return
		default:
			println("Invalid choice. Please try again.")
		}
	}
}

func (a *app) promptRegion() (*geometry.Region, bool) {
	fmt.Println("\033[33m\nWarning:\033[0m")
	fmt.Println("\033[33m- A '.geojson' file with the region name should be present in data/geojsons.\033[0m")
	fmt.Println("\033[33m- Multi-feature files identify regions by the region_id property.\n\033[0m")

	fmt.Print("\033[34mEnter the region file name: \033[0m")
	file, _ := a.reader.ReadString('\n')
	file = strings.TrimSpace(file)

	fmt.Print("\033[34mEnter the region id (blank for single-feature files): \033[0m")
	regionID, _ := a.reader.ReadString('\n')
	regionID = strings.TrimSpace(regionID)

	path := filepath.Join(properties.RegionsPath(), file+".geojson")
	region, err := geometry.FromGeoJSON(path, regionID)
	if err != nil {
		fmt.Printf("\n\033[31mInvalid region: %s\033[0m\n", err.Error())
		return nil, false
	}
	return region, true
}

func (a *app) promptDates() (raster.DateRange, bool) {
	fmt.Print("\033[34mEnter the start date (YYYY-MM-DD): \033[0m")
	startStr, _ := a.reader.ReadString('\n')
	start, err := time.Parse("2006-01-02", strings.TrimSpace(startStr))
	if err != nil {
		fmt.Printf("\n\033[31mInvalid date: %s\033[0m\n", err.Error())
		return raster.DateRange{}, false
	}
	fmt.Print("\033[34mEnter the end date (YYYY-MM-DD): \033[0m")
	endStr, _ := a.reader.ReadString('\n')
	end, err := time.Parse("2006-01-02", strings.TrimSpace(endStr))
	if err != nil {
		fmt.Printf("\n\033[31mInvalid date: %s\033[0m\n", err.Error())
		return raster.DateRange{}, false
	}
	return raster.DateRange{Start: start, End: end}, true
}

func (a *app) runSingle(kind analysis.Kind) {
	region, ok := a.promptRegion()
	if !ok {
		return
	}
	dates, ok := a.promptDates()
	if !ok {
		return
	}

	cacheKey := a.resultCache.Key(region.Name, dates, kind)
	if cached, ok := a.resultCache.Get(cacheKey); ok {
		fmt.Println("\033[32m\nCached result:\033[0m")
		printZonal(cached)
		return
	}

	ctx := context.Background()
	var result *analysis.Result
	var err error
	switch kind {
	case analysis.KindNDVI:
		result, err = a.orchestrator.AnalyzeNDVI(ctx, region, dates)
	case analysis.KindIGBP:
		result, err = a.orchestrator.AnalyzeLandCover(ctx, region, dates)
	case analysis.KindWorldCover:
		result, err = a.orchestrator.AnalyzeWorldCover(ctx, region, dates)
	}
	if err != nil {
		fmt.Printf("\n\033[31mError analyzing region: %s\033[0m\n", err.Error())
		notification.SendErrorNotification(fmt.Sprintf("LandWatch CLI\n\nError analyzing %s: %s", region.Name, err.Error()))
		return
	}

	printZonal(result.Zonal)
	if err := a.resultCache.Set(cacheKey, result.Zonal); err != nil {
		fmt.Printf("\033[33mFailed to cache result: %s\033[0m\n", err.Error())
	}

	baseName := fmt.Sprintf("%s_%s_%s", strings.ReplaceAll(region.Name, "/", "_"), kind, dates.Start.Format("2006-01-02"))
	overlayPath, err := output.WriteOverlayPNG(result.Overlay, baseName)
	if err != nil {
		fmt.Printf("\n\033[31mError writing overlay: %s\033[0m\n", err.Error())
		return
	}
	writeLegend(kind, baseName)
	csvPath, err := output.WriteStatsCSV(result, baseName)
	if err != nil {
		fmt.Printf("\n\033[31mError writing stats CSV: %s\033[0m\n", err.Error())
		return
	}
	geojsonPath, err := output.WriteResultGeoJSON(region, result, baseName)
	if err != nil {
		fmt.Printf("\n\033[31mError writing GeoJSON: %s\033[0m\n", err.Error())
		return
	}

	fmt.Printf("\n\033[32mSuccessful analysis!\n Overlay: %s\n Stats: %s\n GeoJSON: %s\033[0m\n", overlayPath, csvPath, geojsonPath)
	notification.SendAnalysisReport(fmt.Sprintf("LandWatch CLI\n\n%s analysis of %s finished.\nOverlay: %s\nStats: %s", kind, region.Name, overlayPath, csvPath))
}

func (a *app) runCombined() {
	region, ok := a.promptRegion()
	if !ok {
		return
	}
	dates, ok := a.promptDates()
	if !ok {
		return
	}

	combined, err := a.orchestrator.AnalyzeAll(context.Background(), region, dates)
	if err != nil {
		fmt.Printf("\n\033[31mError analyzing region: %s\033[0m\n", err.Error())
		notification.SendErrorNotification(fmt.Sprintf("LandWatch CLI\n\nError analyzing %s: %s", region.Name, err.Error()))
		return
	}

	fmt.Println("\033[32m\nNDVI:\033[0m")
	printZonal(combined.NDVI.Zonal)
	fmt.Println("\033[32m\nIGBP land cover:\033[0m")
	printZonal(combined.LandCover.Zonal)
}

func (a *app) runTrend() {
	region, ok := a.promptRegion()
	if !ok {
		return
	}
	fmt.Print("\033[34mEnter the start year: \033[0m")
	var startYear, endYear int
	if _, err := fmt.Scan(&startYear); err != nil {
		fmt.Printf("\n\033[31mInvalid year\033[0m\n")
		return
	}
	fmt.Print("\033[34mEnter the end year: \033[0m")
	if _, err := fmt.Scan(&endYear); err != nil || endYear < startYear {
		fmt.Printf("\n\033[31mInvalid year range\033[0m\n")
		return
	}

	trend, err := a.orchestrator.RollNDVI(context.Background(), region, temporal.YearSlices(startYear, endYear))
	if err != nil {
		fmt.Printf("\n\033[31mError rolling trend: %s\033[0m\n", err.Error())
		notification.SendErrorNotification(fmt.Sprintf("LandWatch CLI\n\nError rolling trend for %s: %s", region.Name, err.Error()))
		return
	}

	for _, entry := range trend.Series {
		switch {
		case entry.Failed():
			fmt.Printf("\033[31m%s: failed (%s)\033[0m\n", entry.Slice.Label, entry.Err.Error())
		case entry.Result.NoData:
			fmt.Printf("\033[33m%s: no valid pixels\033[0m\n", entry.Slice.Label)
		default:
			fmt.Printf("\033[32m%s: mean NDVI %.3f over %.1f ha\033[0m\n", entry.Slice.Label, entry.Result.Stats.Mean, entry.Result.TotalArea/10_000)
		}
	}

	name := fmt.Sprintf("%s_ndvi_trend_%d_%d", strings.ReplaceAll(region.Name, "/", "_"), startYear, endYear)
	csvPath, err := output.WriteTrendCSV(trend, name)
	if err != nil {
		fmt.Printf("\n\033[31mError writing trend CSV: %s\033[0m\n", err.Error())
		return
	}
	fmt.Printf("\n\033[32mTrend written to %s\033[0m\n", csvPath)
	notification.SendAnalysisReport(fmt.Sprintf("LandWatch CLI\n\nYearly NDVI trend for %s (%d-%d) written to %s", region.Name, startYear, endYear, csvPath))
}

func listRegions() {
	files, err := os.ReadDir(properties.RegionsPath())
	if err != nil {
		fmt.Printf("\n\033[31mError reading geojsons folder: %s\033[0m\n", err.Error())
		return
	}
	fmt.Println("\033[33m\nWarning:\033[0m")
	fmt.Println("\033[33mTo add a region, drop its '.geojson' file into the data/geojsons folder.\033[0m")

	fmt.Println("\n\033[32mAvailable regions:\033[0m")
	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".geojson") {
			continue
		}
		name := strings.TrimSuffix(file.Name(), ".geojson")
		ids, err := geometry.ListRegionIDs(filepath.Join(properties.RegionsPath(), file.Name()))
		if err != nil || len(ids) == 0 {
			fmt.Printf("\033[32m- %s\033[0m\n", name)
			continue
		}
		fmt.Printf("\033[32m- %s (%s)\033[0m\n", name, strings.Join(ids, ", "))
	}
}

func printZonal(result *zonal.Result) {
	if result.NoData {
		fmt.Println("\033[33mNo valid pixels in the selected region and window (fully clouded or outside coverage).\033[0m")
		return
	}
	fmt.Printf("Total: %d pixels, %.2f ha\n", result.TotalPixels, result.TotalArea/10_000)
	for _, group := range result.Groups {
		fmt.Printf("  %-40s %8d px %12.2f ha %6.2f%%\n", group.Key, group.Pixels, group.Area/10_000, group.Percent)
	}
	if result.Stats != nil {
		fmt.Printf("  mean %.3f  min %.3f  max %.3f  median %.3f  q1 %.3f  q3 %.3f\n",
			result.Stats.Mean, result.Stats.Min, result.Stats.Max, result.Stats.Median, result.Stats.Q1, result.Stats.Q3)
	}
}

func writeLegend(kind analysis.Kind, baseName string) {
	var err error
	switch kind {
	case analysis.KindNDVI:
		_, err = output.WriteOverlayPNG(render.RampLegend(render.IndexRamp()), baseName+"_legend")
	case analysis.KindIGBP:
		_, err = output.WriteOverlayPNG(render.ClassLegend(landcover.IGBPClasses()), baseName+"_legend")
	case analysis.KindWorldCover:
		_, err = output.WriteOverlayPNG(render.ClassLegend(landcover.WorldCoverClasses()), baseName+"_legend")
	}
	if err != nil {
		fmt.Printf("\033[33mFailed to write legend: %s\033[0m\n", err.Error())
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			fmt.Println("\033[33mNo .env file found, using process environment\033[0m")
		}
	}

	cfg := properties.MustLoad()

	workers := cfg.AnalysisWorkers
	for i, arg := range os.Args {
		if strings.HasPrefix(arg, "--workers=") {
			n, err := strconv.Atoi(strings.TrimPrefix(arg, "--workers="))
			if err != nil {
				fmt.Printf("\033[31mInvalid workers value: %s\033[0m\n", arg)
				os.Exit(1)
			}
			workers = n
			break
		} else if arg == "--workers" && i+1 < len(os.Args) {
			n, err := strconv.Atoi(os.Args[i+1])
			if err != nil {
				fmt.Printf("\033[31mInvalid workers value: %s\033[0m\n", os.Args[i+1])
				os.Exit(1)
			}
			workers = n
			break
		}
	}

	source, err := provider.NewCopernicus(cfg)
	if err != nil {
		fmt.Printf("\033[31m%s\033[0m\n", err.Error())
		os.Exit(1)
	}

	initCLI(analysis.NewOrchestrator(source, workers))
}
