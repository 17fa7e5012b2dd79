package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"starquads/internal/models"
	"starquads/pkg/config"
	"starquads/pkg/export"
	"starquads/pkg/mask"
	"starquads/pkg/pipeline"
	"starquads/pkg/visualization"
)

func main() {
	// Parse command line arguments
	inputPath := flag.String("input", "", "Source image to detect stars in")
	configPath := flag.String("config", "starquads.yaml", "Configuration file (optional)")
	outputDir := flag.String("output", "results", "Directory to write results into")
	maxStars := flag.Int("max-stars", 0, "Maximum number of stars to keep (overrides config)")
	minDistance := flag.Float64("min-distance", -1, "Minimum star separation as % of width+height (overrides config)")
	kNeighbors := flag.Int("k", 0, "Neighbors per seed for quad generation (overrides config)")
	sigma := flag.Float64("sigma", -1, "Threshold sigma above median luminance (overrides config)")
	blurRadius := flag.Float64("blur", -1, "Gaussian blur radius before thresholding (overrides config)")
	drawOverlay := flag.Bool("overlay", true, "Render an annotated overlay image")
	saveMask := flag.Bool("save-mask", false, "Save the intermediate binary mask")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	writeConfig := flag.Bool("write-config", false, "Write a default config file and exit")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger().Level(zerolog.InfoLevel)

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatal().Err(err).Msg("Failed to write config file")
		}
		fmt.Printf("Wrote default configuration to %s\n", *configPath)
		return
	}

	if *inputPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Command line flags win over the config file when given
	if *maxStars > 0 {
		cfg.Detection.MaxStars = *maxStars
	}
	if *minDistance >= 0 {
		cfg.Detection.MinDistancePercent = *minDistance
	}
	if *kNeighbors > 0 {
		cfg.Detection.KNeighbors = *kNeighbors
	}
	if *sigma >= 0 {
		cfg.Threshold.Sigma = *sigma
	}
	if *blurRadius >= 0 {
		cfg.Threshold.BlurRadius = *blurRadius
	}
	if *saveMask {
		cfg.Output.SaveMask = true
	}
	if *verbose || cfg.Output.Verbose {
		log = log.Level(zerolog.DebugLevel)
	}

	img, err := imaging.Open(*inputPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *inputPath).Msg("Failed to open input image")
	}
	field := models.NewField(img, *inputPath)
	log.Info().
		Str("name", field.Name).
		Int("width", field.Width).
		Int("height", field.Height).
		Msg("Loaded field image")

	m, stats, err := mask.FromImage(field.Image, cfg.Threshold.Sigma, cfg.Threshold.BlurRadius)
	if err != nil {
		log.Fatal().Err(err).Msg("Thresholding failed")
	}
	log.Info().
		Float64("median", stats.Median).
		Float64("stddev", stats.StdDev).
		Float64("threshold", stats.Threshold).
		Int("foreground", stats.Foreground).
		Msg("Built binary mask")

	p, err := pipeline.New(cfg.Params(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid detection parameters")
	}

	start := time.Now()
	result, err := p.Run(m)
	if err != nil {
		log.Fatal().Err(err).Msg("Detection failed")
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create output directory")
	}

	starsPath := filepath.Join(*outputDir, field.Name+"_stars.csv")
	if err := export.SaveStarsCSV(starsPath, result.Stars); err != nil {
		log.Fatal().Err(err).Msg("Failed to write star CSV")
	}

	quadsPath := filepath.Join(*outputDir, field.Name+"_quads.csv")
	if err := export.SaveQuadsCSV(quadsPath, result.SeedQuads); err != nil {
		log.Fatal().Err(err).Msg("Failed to write quad CSV")
	}

	jsonPath := filepath.Join(*outputDir, field.Name+"_result.json")
	if err := export.SaveResultJSON(jsonPath, result); err != nil {
		log.Fatal().Err(err).Msg("Failed to write result JSON")
	}

	if cfg.Output.SaveMask {
		maskPath := filepath.Join(*outputDir, field.Name+"_mask.png")
		if err := saveMaskPNG(m, maskPath); err != nil {
			log.Fatal().Err(err).Msg("Failed to write mask image")
		}
	}

	if *drawOverlay {
		overlayPath := filepath.Join(*outputDir, field.Name+"_overlay.png")
		if err := visualization.NewOverlay(field.Image, result).SavePNG(overlayPath); err != nil {
			log.Fatal().Err(err).Msg("Failed to write overlay image")
		}
	}

	fmt.Printf("Detection completed in %.2f seconds\n", time.Since(start).Seconds())
	fmt.Printf("Components found: %d\n", result.TotalComponents)
	fmt.Printf("Stars selected:   %d\n", len(result.Stars))
	fmt.Printf("Quads generated:  %d\n", result.QuadCount)
	fmt.Printf("Results written to: %s\n", *outputDir)
}

// saveMaskPNG writes the binary mask as a grayscale image.
func saveMaskPNG(m *mask.Mask, path string) error {
	img := image.NewGray(image.Rect(0, 0, m.Width(), m.Height()))
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			if m.Foreground(x, y) {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}
