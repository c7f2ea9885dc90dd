// Package confloader loads configuration with koanf and watches the
// configuration file for changes.
//
// Priority (highest to lowest):
//
//  1. Command-line flags, passed in through LoadMap
//  2. Environment variables (SHMAP_SECTION_FIELD)
//  3. The YAML configuration file
//  4. Values already present in the target struct
package confloader
