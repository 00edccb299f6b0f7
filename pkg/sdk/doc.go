// Package sdk exposes the high-level entry point of the license SDK. It
// wires together network resolution, the EVM client, the transaction
// executor and the license contract facade from one configuration value.
//
// # Usage
//
//	cfg, err := config.Load("config.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	core, err := sdk.NewSDK(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer core.Close()
//
//	outcome, err := core.License().Mint(ctx, recipient, "7", metadata)
//
// NewSDK never terminates the process: configuration problems, unreachable
// networks and missing contracts all come back as kinded errors from the
// errs package.
//
// # Logging
//
// The package init installs a console zap logger as the global logger.
// Replace it with zap.ReplaceGlobals(...) to integrate with application
// logging.
package sdk
