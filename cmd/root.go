package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/kiesman99/mosaic/internal/mosaic"
	"github.com/kiesman99/mosaic/internal/observability"
	"github.com/kiesman99/mosaic/internal/stitch"
	"github.com/kiesman99/mosaic/internal/stitcher"
	"github.com/kiesman99/mosaic/internal/store"
	"github.com/kiesman99/mosaic/pkg/tile"
)

var cfgFile string

// datasetEnvKeys have no flag, so they are bound to the environment
// explicitly for Unmarshal to see them.
var datasetEnvKeys = []string{
	"dataset.username",
	"dataset.password",
	"dataset.timeout",
	"dataset.s3.bucket",
	"dataset.s3.prefix",
	"dataset.s3.region",
	"dataset.s3.endpoint",
	"dataset.s3.access_key_id",
	"dataset.s3.secret_access_key",
	"dataset.s3.use_path_style",
}

// config is the subset of the configuration decoded into structs.
type config struct {
	Dataset store.Config `mapstructure:"dataset"`
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mosaic",
	Short: "Stitch one-degree elevation tiles into a mosaic for any bounding box",
	Long: `mosaic stitches together one-degree raster tiles into a single image.

Tiles are addressed by the latitude and longitude of their south-west corner
(for example S026W049) and are read from a directory, an HTTP server or an S3
bucket. The mosaic is written as PNG, JPEG or TIFF. Optionally, a separate
worldfile with georeferencing data can be written.

Examples:
  # Stitch the tiles between two points from a local directory
  mosaic --point1 -25.3,-48.1 --point2 -25.7,-48.5 --dataset-dir ./tiles -o curitiba.png

  # Same area as a bounding box, written as TIFF with a world file
  mosaic --bbox -25.7,-48.5,-25.3,-48.1 --dataset-dir ./tiles -f tiff -w -o curitiba.tif

  # Fetch tiles over HTTP and scale the result to 1024 pixels wide
  mosaic --bbox 45.5,6.25,46.5,7.75 --dataset-source http --dataset-url https://tiles.example.com/srtm --width 1024 -o alps.png

  # Start HTTP server
  mosaic serve --port 8080`,
	// If no subcommand is specified and we have args, run the stitch command
	RunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetString("point1") == "" && viper.GetString("point2") == "" && viper.GetString("bbox") == "" {
			return cmd.Help()
		}
		return runStitch(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.mosaic.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console|json)")

	// Dataset options are shared by the CLI and the server
	rootCmd.PersistentFlags().String("dataset-source", store.SourceDir, "tile source (dir|http|s3)")
	rootCmd.PersistentFlags().String("dataset-dir", ".", "directory holding the tiles")
	rootCmd.PersistentFlags().String("dataset-ext", ".png", "tile file extension")
	rootCmd.PersistentFlags().String("dataset-url", "", "tile URL template with {address}, {ext}, {region}, {lat}, {lon} placeholders")
	rootCmd.PersistentFlags().String("dataset-user-agent", "mosaic/1.0", "HTTP User-Agent header")
	rootCmd.PersistentFlags().Int("dataset-cache-size", 0, "number of decoded tiles kept in memory (0 disables the cache)")
	rootCmd.PersistentFlags().Int("concurrency", 4, "number of tiles fetched in parallel")

	// Output options
	rootCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	rootCmd.Flags().StringP("format", "f", "png", "output format (png|jpeg|tiff)")
	rootCmd.Flags().BoolP("worldfile", "w", false, "write world file")
	rootCmd.Flags().Int("width", 0, "scale the mosaic to this width in pixels")
	rootCmd.Flags().Int("height", 0, "scale the mosaic to this height in pixels")

	// Coordinate options
	rootCmd.Flags().String("point1", "", "first corner as 'lat,lon'")
	rootCmd.Flags().String("point2", "", "opposite corner as 'lat,lon'")
	rootCmd.Flags().String("bbox", "", "bounding box as 'lat1,lon1,lat2,lon2'")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("dataset.source", rootCmd.PersistentFlags().Lookup("dataset-source"))
	viper.BindPFlag("dataset.dir", rootCmd.PersistentFlags().Lookup("dataset-dir"))
	viper.BindPFlag("dataset.ext", rootCmd.PersistentFlags().Lookup("dataset-ext"))
	viper.BindPFlag("dataset.url", rootCmd.PersistentFlags().Lookup("dataset-url"))
	viper.BindPFlag("dataset.user_agent", rootCmd.PersistentFlags().Lookup("dataset-user-agent"))
	viper.BindPFlag("dataset.cache_size", rootCmd.PersistentFlags().Lookup("dataset-cache-size"))
	viper.BindPFlag("concurrency", rootCmd.PersistentFlags().Lookup("concurrency"))

	viper.BindPFlag("output", rootCmd.Flags().Lookup("output"))
	viper.BindPFlag("format", rootCmd.Flags().Lookup("format"))
	viper.BindPFlag("worldfile", rootCmd.Flags().Lookup("worldfile"))
	viper.BindPFlag("width", rootCmd.Flags().Lookup("width"))
	viper.BindPFlag("height", rootCmd.Flags().Lookup("height"))
	viper.BindPFlag("point1", rootCmd.Flags().Lookup("point1"))
	viper.BindPFlag("point2", rootCmd.Flags().Lookup("point2"))
	viper.BindPFlag("bbox", rootCmd.Flags().Lookup("bbox"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".mosaic" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".mosaic")
	}

	// MOSAIC_DATASET_DIR overrides dataset.dir
	viper.SetEnvPrefix("mosaic")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	for _, key := range datasetEnvKeys {
		viper.BindEnv(key)
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the logger described by log.level and log.format.
func newLogger() (*zap.Logger, error) {
	return observability.NewLogger(viper.GetString("log.level"), viper.GetString("log.format"))
}

// newStitcher wires the configured tile store into a stitcher. maxPixels
// bounds both the mosaic, checked before its tiles are fetched, and the
// resized output.
func newStitcher(logger *zap.Logger, maxPixels int64) (*stitcher.Stitcher, error) {
	var cfg config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid dataset configuration: %w", err)
	}
	tiles, err := store.New(cfg.Dataset, logger)
	if err != nil {
		return nil, err
	}
	engine := mosaic.NewEngine(tiles,
		mosaic.WithConcurrency(viper.GetInt("concurrency")),
		mosaic.WithMaxPixels(maxPixels),
		mosaic.WithLogger(logger))
	return stitcher.New(engine,
		stitcher.WithMaxPixels(maxPixels),
		stitcher.WithLogger(logger)), nil
}

func runStitch(cmd *cobra.Command, args []string) error {
	p1, p2, err := parseCorners(viper.GetString("point1"), viper.GetString("point2"), viper.GetString("bbox"))
	if err != nil {
		return err
	}

	format, err := tile.ParseFormat(viper.GetString("format"))
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	st, err := newStitcher(logger, stitcher.DefaultMaxPixels)
	if err != nil {
		return err
	}

	s := stitch.NewStitcher(st, &stitch.Options{
		Output:         viper.GetString("output"),
		Format:         format,
		Width:          viper.GetInt("width"),
		Height:         viper.GetInt("height"),
		WriteWorldFile: viper.GetBool("worldfile"),
	}, logger)
	s.SetStderr(cmd.ErrOrStderr())

	return s.StitchPoints(cmd.Context(), p1, p2)
}

// parseCorners accepts either two 'lat,lon' points or a 'lat1,lon1,lat2,lon2'
// bounding box.
func parseCorners(point1, point2, bbox string) (tile.GeoPoint, tile.GeoPoint, error) {
	if bbox != "" {
		if point1 != "" || point2 != "" {
			return tile.GeoPoint{}, tile.GeoPoint{}, fmt.Errorf("--bbox can't be combined with --point1 or --point2")
		}
		coords, err := parseFloats(bbox, 4)
		if err != nil {
			return tile.GeoPoint{}, tile.GeoPoint{}, fmt.Errorf("bbox must be in format 'lat1,lon1,lat2,lon2': %w", err)
		}
		p1, p2 := tile.GeoPoint{Lat: coords[0], Lon: coords[1]}, tile.GeoPoint{Lat: coords[2], Lon: coords[3]}
		if err := p1.Validate(); err != nil {
			return tile.GeoPoint{}, tile.GeoPoint{}, fmt.Errorf("invalid bbox: %w", err)
		}
		if err := p2.Validate(); err != nil {
			return tile.GeoPoint{}, tile.GeoPoint{}, fmt.Errorf("invalid bbox: %w", err)
		}
		return p1, p2, nil
	}

	if point1 == "" || point2 == "" {
		return tile.GeoPoint{}, tile.GeoPoint{}, fmt.Errorf("either specify --bbox or both --point1 and --point2")
	}
	p1, err := parsePoint(point1)
	if err != nil {
		return tile.GeoPoint{}, tile.GeoPoint{}, fmt.Errorf("invalid point1: %w", err)
	}
	p2, err := parsePoint(point2)
	if err != nil {
		return tile.GeoPoint{}, tile.GeoPoint{}, fmt.Errorf("invalid point2: %w", err)
	}
	return p1, p2, nil
}

func parsePoint(s string) (tile.GeoPoint, error) {
	coords, err := parseFloats(s, 2)
	if err != nil {
		return tile.GeoPoint{}, fmt.Errorf("point must be in format 'lat,lon': %w", err)
	}
	p := tile.GeoPoint{Lat: coords[0], Lon: coords[1]}
	return p, p.Validate()
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma separated values, got %d", n, len(parts))
	}
	values := make([]float64, n)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}
