package config

import (
	"flag"
	"os"
)

// LoadWithFlags parses args (the command line after the program name) into a Config, applying environment
// variable overrides for S3 credentials, then validates the result.
func LoadWithFlags(args []string) (*Config, error) {
	fs := flag.NewFlagSet("rfbreplay", flag.ContinueOnError)

	outputDir := fs.String("o", DefaultOutputDir, "directory to write decoded screenshots to")
	indexPath := fs.String("index", DefaultIndexPath, "sqlite database path for replay history (empty disables indexing)")
	logLevel := fs.String("log-level", DefaultLogLevel, "log level: debug, info, warn, error")
	logFormat := fs.String("log-format", DefaultLogFormat, "log format: json, text")
	prune := fs.String("prune", "", "prune index rows older than this duration (e.g. 720h); screenshot artifacts are kept; a given capture is replayed afterwards")

	s3Bucket := fs.String("s3-bucket", "", "S3 bucket for output artifacts (local disk used if empty)")
	s3Region := fs.String("s3-region", "", "S3 region")
	s3Endpoint := fs.String("s3-endpoint", "", "S3-compatible endpoint override (e.g. for MinIO)")
	s3Prefix := fs.String("s3-prefix", "", "S3 key prefix")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := &Config{
		OutputDir:         *outputDir,
		IndexPath:         *indexPath,
		LogLevel:          *logLevel,
		LogFormat:         *logFormat,
		PruneOlderThan:    *prune,
		S3Bucket:          *s3Bucket,
		S3Region:          *s3Region,
		S3Endpoint:        *s3Endpoint,
		S3Prefix:          *s3Prefix,
		S3AccessKeyID:     os.Getenv("RFBREPLAY_S3_ACCESS_KEY_ID"),
		S3SecretAccessKey: os.Getenv("RFBREPLAY_S3_SECRET_ACCESS_KEY"),
	}

	if fs.NArg() > 0 {
		cfg.CapturePath = fs.Arg(0)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}

	return cfg, nil
}
