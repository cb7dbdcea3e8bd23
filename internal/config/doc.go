// Package config loads lumen CLI configuration.
//
// Values come from, in increasing precedence: built-in defaults, a
// lumen.yaml (or lumen.json) file, and LUMEN_* environment variables
// where nested keys join with underscores (LUMEN_PREVIEW_ADDR).
//
//	cfg, err := config.Load("")
//	if err != nil {
//		return err
//	}
//	fmt.Println(cfg.Preview.Addr)
package config
