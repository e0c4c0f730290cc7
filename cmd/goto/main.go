package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/diegostafa/goto/internal/config"
	"github.com/diegostafa/goto/internal/hotkeys"
	"github.com/diegostafa/goto/internal/ipc"
	"github.com/diegostafa/goto/internal/layout"
	"github.com/diegostafa/goto/internal/overlay"
	"github.com/diegostafa/goto/internal/platform"
	"github.com/diegostafa/goto/internal/switcher"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		if len(os.Args) > 2 && (os.Args[2] == "help" || os.Args[2] == "-h" || os.Args[2] == "--help") {
			fmt.Fprintln(os.Stdout, "Usage: goto daemon")
			os.Exit(0)
		}
		if len(os.Args) > 2 {
			fmt.Fprintln(os.Stderr, "daemon takes no arguments")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Usage: goto daemon")
			os.Exit(2)
		}
		runDaemon()
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "show":
		os.Exit(runShow(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "list":
		os.Exit(runList(os.Args[2:]))
	case "pick":
		os.Exit(runPick(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: goto <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the goto daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  show                Open a switching session")
	fmt.Fprintln(w, "  reload              Reload daemon configuration")
	fmt.Fprintln(w, "  list                List windows in most-recently-used order")
	fmt.Fprintln(w, "  pick                Pick a window from a terminal list")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config init         Write the default configuration file")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'goto <command> --help' for command-specific options.")
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: goto status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("session_phase:  %s\n", status.SessionPhase)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	return 0
}

func runShow(args []string) int {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: goto show")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Ask the daemon to open a switching session.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	if err := client.Show(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runReload(args []string) int {
	fs := flag.NewFlagSet("reload", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: goto reload")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Ask the daemon to reload its configuration.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	if err := client.Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: goto list")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List switchable windows in most-recently-used order.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	data, err := client.ListWindows()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for _, win := range data.Windows {
		marker := " "
		if win.Minimized {
			marker = "m"
		}
		fmt.Printf("%s 0x%08x  %-20s %s\n", marker, win.ID, win.Class, win.Title)
	}
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  goto config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  goto config print [--path PATH] [--defaults]")
		fmt.Fprintln(os.Stderr, "  goto config init [--path PATH]")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/goto/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		var err error
		if *path == "" {
			_, err = config.Load()
		} else {
			_, err = config.LoadFromPath(*path)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/goto/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		var cfg *config.Config
		var err error
		if *printDefaults {
			cfg = config.Default()
		} else if *path == "" {
			cfg, err = config.Load()
		} else {
			cfg, err = config.LoadFromPath(*path)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "init":
		fs := flag.NewFlagSet("init", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/goto/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		target := *path
		if target == "" {
			var err error
			target, err = config.DefaultConfigPath()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
		}
		if _, err := os.Stat(target); err == nil {
			fmt.Fprintf(os.Stderr, "config already exists: %s\n", target)
			return 1
		}
		if err := config.Default().Save(target); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("wrote %s\n", target)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func layoutSettings(cfg *config.Config) layout.Settings {
	return layout.Settings{
		WidthPercent:    cfg.Layout.WidthPercent,
		LocationPercent: cfg.Layout.LocationPercent,
		TaskHeight:      cfg.Layout.TaskHeight,
		Gap:             cfg.Layout.Gap,
	}
}

// overlayStyle converts the validated color strings to pixel values.
// Validation already proved they parse, so errors here are impossible
// in practice and fall back to zero (black).
func overlayStyle(cfg *config.Config) overlay.Style {
	pixel := func(s string) uint32 {
		p, _ := config.ParseColor(s)
		return p
	}
	return overlay.Style{
		Background:         pixel(cfg.Colors.Background),
		Border:             pixel(cfg.Colors.Border),
		TaskBackground:     pixel(cfg.Colors.TaskBackground),
		TaskForeground:     pixel(cfg.Colors.TaskForeground),
		SelectedBackground: pixel(cfg.Colors.SelectedBackground),
		SelectedForeground: pixel(cfg.Colors.SelectedForeground),
		SelectedBorder:     pixel(cfg.Colors.SelectedBorder),
		Marker:             cfg.Marker,
		BorderWidth:        cfg.BorderWidth,
	}
}

func runDaemon() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Configuration loaded (next: %s, prev: %s)", cfg.Keys.Next, cfg.Keys.Prev)

	backend, err := platform.NewLinuxBackendFromDisplay()
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer backend.Disconnect()

	log.Println("goto daemon started successfully")

	renderer := overlay.NewManager(backend.XUtil(), backend.RootWindow(), overlayStyle(cfg))
	defer renderer.Cleanup()

	hotkeyHandler, err := hotkeys.NewHandler(backend)
	if err != nil {
		log.Fatalf("Failed to initialize hotkeys: %v", err)
	}

	controller := switcher.NewController(backend, layoutSettings(cfg), renderer, hotkeyHandler, cfg.TimeoutSeconds)
	hotkeyHandler.SetController(controller)

	if err := hotkeyHandler.Register(hotkeys.Bindings{
		Next:     cfg.Keys.Next,
		Prev:     cfg.Keys.Prev,
		Kill:     cfg.Keys.Kill,
		Modifier: cfg.Keys.Modifier,
	}); err != nil {
		log.Fatalf("Failed to register hotkeys: %v", err)
	}
	log.Printf("Hotkeys registered: %s / %s", cfg.Keys.Next, cfg.Keys.Prev)

	reloadChan := make(chan struct{}, 1)

	ipcServer, err := ipc.NewServer(controller, backend, reloadChan)
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	reload := func() {
		newCfg, err := config.Load()
		if err != nil {
			log.Printf("Config reload failed: %v", err)
			return
		}
		controller.UpdateSettings(layoutSettings(newCfg), newCfg.TimeoutSeconds)
		renderer.SetStyle(overlayStyle(newCfg))
		// Key bindings take effect on the next daemon start; regrabbing
		// chords live would require unbinding the old sequences first.
		log.Println("Config reloaded successfully")
	}

	go func() {
		for {
			select {
			case sig := <-sigCh:
				switch sig {
				case syscall.SIGHUP:
					log.Println("Received SIGHUP, reloading config...")
					reload()
				case os.Interrupt, syscall.SIGTERM:
					log.Println("Shutting down goto daemon...")
					ipcServer.Stop()
					os.Exit(0)
				}
			case <-reloadChan:
				reload()
			}
		}
	}()

	log.Println("Entering event loop...")
	backend.EventLoop()
}
