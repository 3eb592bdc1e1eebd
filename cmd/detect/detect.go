package detect

import (
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gobwas/glob"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/synthscan/synthscan/cmd"
	"github.com/synthscan/synthscan/config"
	"github.com/synthscan/synthscan/constants"
	"github.com/synthscan/synthscan/detector"
	"github.com/synthscan/synthscan/util"
)

var (
	flagFast    bool
	flagConfig  string
	flagExclude string
	flagVerbose bool
)

var detectCmd = &cobra.Command{
	Use:   "detect <file>...",
	Short: "Analyze local image / video files",
	Long: `Analyze local image / video files and print one verdict JSON per file.

Args can be plain filenames or globs ("*.png"). Supported formats: images ` +
		strings.Join(constants.SUPPORTED_IMAGE_FORMATS, " ") + `; videos ` +
		strings.Join(constants.SUPPORTED_VIDEO_FORMATS, " ") + `.`,
	Args: cobra.MinimumNArgs(1),
	RunE: detect,
}

func init() {
	cmd.RootCmd.AddCommand(detectCmd)
	detectCmd.Flags().BoolVarP(&flagFast, "fast", "f", false, constants.HELP_FAST_MODE)
	detectCmd.Flags().StringVarP(&flagConfig, "config", "c", "", constants.HELP_CONFIG_FLAG)
	detectCmd.Flags().StringVarP(&flagExclude, "exclude", "x", "",
		`Optional: Glob pattern of filenames to skip (e.g. "*_thumb.*")`)
	detectCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Verbose (debug) logging")
}

func detect(cmd *cobra.Command, args []string) error {
	if flagVerbose {
		log.SetLevel(log.DebugLevel)
	}
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	log.Debugf("enabled detection kinds: %s", strings.Join(util.Keys(cfg.ScoreWeights), ", "))
	var exclude glob.Glob
	if flagExclude != "" {
		if exclude, err = glob.Compile(flagExclude); err != nil {
			return fmt.Errorf("invalid exclude pattern: %w", err)
		}
	}

	det := detector.New(cfg)
	errorCnt := 0
	for _, path := range util.ParseFilenameArgs(args...) {
		if exclude != nil && exclude.Match(filepath.Base(path)) {
			log.Debugf("skip excluded file %s", path)
			continue
		}
		ext := strings.ToLower(filepath.Ext(path))
		isVideo := slices.Contains(constants.SUPPORTED_VIDEO_FORMATS, ext)
		isImage := slices.Contains(constants.SUPPORTED_IMAGE_FORMATS, ext)
		if !isVideo && !isImage {
			log.Warnf("skip unsupported file %s", path)
			continue
		}

		start := time.Now()
		var result *detector.Result
		if isVideo {
			result, err = det.AnalyzeVideo(cmd.Context(), path, flagFast)
		} else {
			result, err = det.AnalyzeImage(cmd.Context(), path, flagFast)
		}
		if err != nil {
			log.WithError(err).Errorf("failed to analyze %s", path)
			errorCnt++
			continue
		}
		result.Filename = path
		result.ProcessingTimeMs = math.Round(float64(time.Since(start).Microseconds())/10) / 100
		fmt.Println(util.ToPrettyJson(result))
	}
	if errorCnt > 0 {
		return fmt.Errorf("%d file(s) failed", errorCnt)
	}
	return nil
}
