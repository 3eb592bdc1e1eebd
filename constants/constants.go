package constants

// Env variable names
const ENV_CONFIG = "SYNTHSCAN_CONFIG"
const ENV_LISTEN_ADDR = "SYNTHSCAN_LISTEN_ADDR"
const ENV_FRONTEND_DIR = "SYNTHSCAN_FRONTEND_DIR"

// Default HTTP listen address
const DEFAULT_LISTEN_ADDR = ":8000"

// Maximum file count of a single batch request
const MAX_BATCH_FILES = 10

const NONE = "none"

// Supported media file format extensions (lowercase, with leading dot)
var SUPPORTED_IMAGE_FORMATS = []string{".jpg", ".jpeg", ".png", ".webp"}
var SUPPORTED_VIDEO_FORMATS = []string{".mp4", ".mov", ".avi"}

const HELP_CONFIG_FLAG = `Config file path (toml / yaml format). If not set, it will try to read from env variable ` +
	ENV_CONFIG + `. All detection weights, thresholds and marker string lists can be overridden in the file; ` +
	`unset fields keep their built-in defaults`

const HELP_FAST_MODE = `Skip the expensive probes (noise, geometry, motion). All other probes still run`
