package deps

import "github.com/caltechlibrary/distillery-sub000/internal/config"

// Requirements lists the external tools an ingest run needs, resolved from
// the configured binary overrides.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "ImageMagick",
			Command:     cfg.Tools.MagickBinary,
			Description: "Converts source images and computes pixel signatures",
		},
		{
			Name:        "ExifTool",
			Command:     cfg.Tools.ExifToolBinary,
			Description: "Stamps descriptive metadata and reads technical metadata",
		},
	}
}
