package treesitter

import "time"

// Defaults applied when ParseOptions fields are left at their zero values.
const (
	DefaultMaxSourceSize = 10 * 1024 * 1024 // 10MB
	DefaultParseTimeout  = 15 * time.Second

	// File extensions recognized by language detection.
	RustExtension = "rs"
)
