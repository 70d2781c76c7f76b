package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/b1naryth1ef/atlas"
	"github.com/b1naryth1ef/atlas/backend"
	"github.com/b1naryth1ef/atlas/logging"
	"github.com/b1naryth1ef/atlas/scan"
	"github.com/b1naryth1ef/atlas/server"
	"github.com/b1naryth1ef/atlas/sidebar"
	"github.com/b1naryth1ef/atlas/wms"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func newApp() *cli.App {
	return &cli.App{
		Name:        "atlas",
		Description: "web map viewer for GeoJSON layer libraries and WMS services",
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:  "config",
				Usage: "path to the configuration file",
				Value: "config.hcl",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug, info, warn, error); overrides the config file",
			},
		},
		Before: setupLogging,
		After: func(*cli.Context) error {
			logging.Sync()
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "serve the map UI and its API",
				Action: commandServe,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Usage: "address to listen on, overrides server.listen",
					},
				},
			},
			{
				Name:   "layers",
				Usage:  "print the layer library as a sidebar tree",
				Action: commandLayers,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "filter",
						Usage: "only show groups or layers matching this text",
					},
					&cli.StringSliceFlag{
						Name:  "active",
						Usage: "mark a layer (group/file) as active",
					},
				},
			},
			{
				Name:      "capabilities",
				Usage:     "list the selectable layers of a WMS service",
				ArgsUsage: "<url>",
				Action:    commandCapabilities,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "select every layer and print the resulting active layers",
					},
				},
			},
			{
				Name:   "scan",
				Usage:  "validate every GeoJSON file in the layer library",
				Action: commandScan,
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:  "output",
						Usage: "directory to write " + scan.ReportFileName + " to",
					},
				},
			},
			{
				Name:   "chat",
				Usage:  "send one question to the document backend",
				Action: commandChat,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Required: true, EnvVars: []string{"ATLAS_USERNAME"}},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"ATLAS_PASSWORD"}},
					&cli.StringFlag{Name: "query", Required: true},
					&cli.StringFlag{Name: "mode", Value: "internal"},
				},
			},
		},
	}
}

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

// loadConfig reads the config file and applies its log_level unless
// --log-level was given.
func loadConfig(ctx *cli.Context) (*atlas.Config, error) {
	config, err := atlas.LoadConfig(ctx.Path("config"), ctx.IsSet("config"))
	if err != nil {
		return nil, err
	}
	if !ctx.IsSet("log-level") {
		if _, err := logging.Init(config.LogLevel); err != nil {
			return nil, err
		}
	}
	return config, nil
}

func setupLogging(ctx *cli.Context) error {
	level := ctx.String("log-level")
	if level == "" {
		level = "info"
	}
	_, err := logging.Init(level)
	return err
}

func printJSON(ctx *cli.Context, v any) error {
	enc := json.NewEncoder(ctx.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func commandServe(ctx *cli.Context) error {
	config, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if listen := ctx.String("listen"); listen != "" {
		config.Server.Listen = listen
	}

	srv, err := server.NewServer(config)
	if err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Serve(sigCtx)
}

func commandLayers(ctx *cli.Context) error {
	config, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	groups, err := atlas.ListLayerGroups(config.GeoJSON.Path)
	if err != nil {
		return err
	}

	palette, err := atlas.NewPalette(config.GeoJSON.PaletteSize)
	if err != nil {
		return err
	}
	state := sidebar.NewState(palette)
	state.Activate(ctx.StringSlice("active")...)

	tree := sidebar.Build(groups, state).Filter(ctx.String("filter"))
	for _, g := range tree.Groups {
		fmt.Fprintf(ctx.App.Writer, "%s (%d) [%s]\n", g.Name, g.Count, g.Check)
		for _, e := range g.Entries {
			mark := " "
			if e.Active {
				mark = "x"
			}
			fmt.Fprintf(ctx.App.Writer, "  [%s] %s %s\n", mark, e.Label, e.Color)
		}
	}
	return nil
}

func commandCapabilities(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.Exit(wms.MsgMissingURL, 1)
	}

	config, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	timeout, err := config.WMSTimeout()
	if err != nil {
		return err
	}
	client := wms.NewClient(timeout, config.WMS.UserAgent)

	var dialog wms.Dialog
	dialog.SetURL(ctx.Args().First())
	if err := dialog.Load(ctx.Context, client); err != nil {
		logging.L().Named("wms").Debug("capabilities load failed", zap.Error(err))
	}

	state := dialog.State()
	if state.Error != "" {
		return cli.Exit(state.Error, 1)
	}

	if !ctx.Bool("all") {
		return printJSON(ctx, state.Layers)
	}

	dialog.SelectAll()
	var active wms.ActiveLayers
	active.Add(dialog.Confirm()...)
	return printJSON(ctx, active.List())
}

func commandScan(ctx *cli.Context) error {
	config, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	report, err := scan.Scan(ctx.Context, config, scan.ScanOpts{
		OutputPath: ctx.Path("output"),
	})
	if err != nil {
		return err
	}

	for _, f := range report.Files {
		if f.Error != "" {
			fmt.Fprintf(ctx.App.Writer, "invalid %s: %s\n", f.Path, f.Error)
		}
	}
	fmt.Fprintf(ctx.App.Writer, "%d valid, %d invalid\n", report.Valid, report.Invalid)
	if report.Invalid > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func commandChat(ctx *cli.Context) error {
	config, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	client := backend.NewClient(config.Backend.URL)
	session, err := client.Login(ctx.Context, ctx.String("username"), ctx.String("password"))
	if err != nil {
		return err
	}

	sessCtx := backend.WithSession(ctx.Context, session)
	defer func() {
		if err := client.Logout(context.WithoutCancel(sessCtx)); err != nil {
			logging.L().Named("backend").Warn("logout failed", zap.Error(err))
		}
	}()

	resp, err := client.Chat(sessCtx, backend.ChatRequest{
		Query: ctx.String("query"),
		Mode:  ctx.String("mode"),
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(ctx.App.Writer, resp.Answer)
	for _, src := range resp.Sources {
		fmt.Fprintf(ctx.App.Writer, "- %s (p. %s)\n", src.FileName, src.PageLabel)
	}
	return nil
}
