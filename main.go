package main

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"themeplane/api"
	"themeplane/config"
	"themeplane/model"
	"themeplane/storage"
	"themeplane/swatch"
	"themeplane/theme"
	"themeplane/tokens"
	"themeplane/watcher"
)

//go:embed themes
var themesFS embed.FS

//go:embed web/dist
var staticFS embed.FS

var (
	dataDir     string
	themesDir   string
	listen      string
	listenPort  int
	public      bool
	renderOut   string
	renderScope string
	checkRefs   bool
	appVersion  = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "themeplane",
	Short: "themeplane – design token server and preview",
	Long:  "Themeplane serves design token themes as CSS with a live preview dashboard.",
	Run:   runServe,
}

var renderCmd = &cobra.Command{
	Use:   "render [theme] [variant]",
	Short: "Render a theme variant as CSS",
	Long:  "Resolve a theme variant and write its CSS custom properties to stdout or a file.",
	Args:  cobra.MaximumNArgs(2),
	Run:   runRender,
}

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate token documents",
	Long:  "Check token document files for malformed keys and, optionally, dangling references.",
	Args:  cobra.MinimumNArgs(1),
	Run:   runValidate,
}

var previewCmd = &cobra.Command{
	Use:   "preview [theme] [variant]",
	Short: "Preview color scales in the terminal",
	Long:  "Resolve a theme variant and render its color scales as terminal swatches.",
	Args:  cobra.MaximumNArgs(2),
	Run:   runPreview,
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [theme] [variant]",
	Short: "Capture a theme variant snapshot",
	Long:  "Resolve a theme variant and persist its token set to the data directory.",
	Args:  cobra.MaximumNArgs(2),
	Run:   runSnapshot,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  "Manage themeplane configuration files.",
}

var configGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a default configuration file",
	Long:  "Generate a default themeplane.config file in the specified data directory (or current directory if not specified).",
	Run:   runConfigGenerate,
}

func init() {
	wd, _ := os.Getwd()
	rootCmd.Version = appVersion
	rootCmd.Flags().StringVar(&dataDir, "data-dir", wd, "Data directory (default: current directory)")
	rootCmd.Flags().StringVar(&themesDir, "themes-dir", "", "Theme directory (default: embedded themes)")
	rootCmd.Flags().StringVar(&listen, "listen", "all", "IP address to listen on (default: all)")
	rootCmd.Flags().IntVar(&listenPort, "listen-port", 8080, "Port to listen on (default: 8080)")
	rootCmd.Flags().BoolVar(&public, "public", false, "Allow access from other hosts")

	for _, cmd := range []*cobra.Command{renderCmd, previewCmd, snapshotCmd} {
		cmd.Flags().StringVar(&dataDir, "data-dir", wd, "Data directory (default: current directory)")
		cmd.Flags().StringVar(&themesDir, "themes-dir", "", "Theme directory (default: embedded themes)")
	}
	renderCmd.Flags().StringVar(&renderOut, "out", "", "Write CSS to a file instead of stdout")
	renderCmd.Flags().StringVar(&renderScope, "scope", ":root", "CSS selector to scope the custom properties to")
	validateCmd.Flags().BoolVar(&checkRefs, "refs", false, "Also report references that resolve to no token")

	configGenerateCmd.Flags().StringVar(&dataDir, "data-dir", wd, "Data directory where config file will be created (default: current directory)")
	configCmd.AddCommand(configGenerateCmd)
	rootCmd.AddCommand(renderCmd, validateCmd, previewCmd, snapshotCmd, configCmd)
}

func runServe(cmd *cobra.Command, args []string) {
	// Load config from data-dir
	cfg, err := config.Load(dataDir)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Override config with CLI flags only if they were explicitly provided
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = dataDir
	} else if cfg.DataDir != "" && cfg.DataDir != "." {
		// If data-dir flag wasn't provided but config file specifies one, use it
		dataDir = cfg.DataDir
		cfg.DataDir = dataDir
	}

	if cmd.Flags().Changed("listen") || cmd.Flags().Changed("listen-port") {
		if listen != "" && listen != "all" {
			cfg.ListenAddr = fmt.Sprintf("%s:%d", listen, listenPort)
		} else {
			// Listen on all interfaces
			cfg.ListenAddr = fmt.Sprintf(":%d", listenPort)
		}
	}
	if cmd.Flags().Changed("themes-dir") {
		cfg.ThemesDir = themesDir
	}
	if cmd.Flags().Changed("public") {
		cfg.Public = public
	}
	if !cfg.Public {
		cfg.ListenAddr = localBind(cfg.ListenAddr)
	}

	// Ensure data directory exists and is absolute
	dataDirAbs, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		log.Fatalf("resolve data dir: %v", err)
	}
	cfg.DataDir = dataDirAbs

	store := storage.New(cfg.DataDir)
	if err := store.EnsureDirs(); err != nil {
		log.Fatalf("ensure data dir: %v", err)
	}

	themeSource, watchRoot, err := themeSourceFor(cfg)
	if err != nil {
		log.Fatalf("resolve themes dir: %v", err)
	}

	themeManager, err := theme.NewManager(themeSource)
	if err != nil {
		log.Fatalf("initialize theme manager: %v", err)
	}

	initial := model.Selection{Theme: cfg.DefaultTheme, Variant: cfg.DefaultVariant}
	if sel, err := resolveSelection(themeManager, initial, nil); err != nil {
		log.Printf("Warning: %v", err)
		initial = model.Selection{}
	} else {
		initial = sel
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	apiServer := api.NewServer(themeManager, store, initial)
	themeHandler := theme.NewHandler(themeManager, apiServer.Current)

	if watchRoot != "" {
		w := watcher.New(watchRoot, cfg.WatchEvery(), func() {
			if err := themeManager.Reload(); err != nil {
				log.Printf("[watcher] reload failed: %v", err)
				return
			}
			apiServer.NotifyReload()
		})
		w.Start(ctx)
	}

	// Load index.html template from static files
	indexHTML, err := staticFS.ReadFile("web/dist/index.html")
	if err != nil {
		log.Fatalf("Failed to read index.html: %v", err)
	}
	indexTemplate := template.Must(template.New("index").Parse(string(indexHTML)))

	mux := http.NewServeMux()
	apiServer.Register(mux)

	// Theme endpoints
	mux.HandleFunc("/api/theme", themeHandler.HandleTheme)
	mux.HandleFunc("/api/themes", themeHandler.HandleThemes)

	// Index page handler
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		current := apiServer.Current()
		if themeManager.GetTheme(current.Theme) == nil {
			if list := themeManager.ListThemes(); len(list) > 0 {
				current.Theme = list[0]
				current.Variant = themeManager.DefaultVariant(current.Theme)
			}
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = indexTemplate.Execute(w, map[string]any{
			"Title":           "themeplane",
			"ThemeMenuHTML":   template.HTML(themeHandler.ThemeMenuHTML(current.Theme)),
			"VariantMenuHTML": template.HTML(themeHandler.VariantMenuHTML(current.Theme, current.Variant)),
			"CurrentTheme":    current.Theme,
			"CurrentVariant":  current.Variant,
			"AppVersion":      appVersion,
			"Year":            time.Now().Year(),
		})
	})

	// Static files
	staticContent, err := fs.Sub(staticFS, "web/dist")
	if err != nil {
		log.Fatalf("Failed to create static file sub-filesystem: %v", err)
	}

	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticContent))))

	mux.HandleFunc("/main.js", func(w http.ResponseWriter, r *http.Request) {
		content, err := staticFS.ReadFile("web/dist/main.js")
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Write(content)
	})

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}

	// Print listening addresses
	printListeningAddresses(cfg.ListenAddr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}

func runRender(cmd *cobra.Command, args []string) {
	themeManager, cfg := cliManager(cmd)

	sel, err := resolveSelection(themeManager, model.Selection{Theme: cfg.DefaultTheme, Variant: cfg.DefaultVariant}, args)
	if err != nil {
		log.Fatalf("%v", err)
	}

	merged, reports, err := themeManager.ResolveTheme(sel.Theme, sel.Variant)
	if err != nil {
		log.Fatalf("resolve %s/%s: %v", sel.Theme, sel.Variant, err)
	}
	for _, report := range reports {
		for _, msg := range report.Errors {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
		}
	}

	css := theme.RenderCSSScoped(renderScope, merged)
	if renderOut == "" {
		fmt.Print(css)
		return
	}
	if err := os.WriteFile(renderOut, []byte(css), 0o644); err != nil {
		log.Fatalf("write %s: %v", renderOut, err)
	}
	fmt.Printf("Wrote %s/%s CSS to %s\n", sel.Theme, sel.Variant, renderOut)
}

func runValidate(cmd *cobra.Command, args []string) {
	failed := false

	for _, path := range args {
		format, ok := theme.FormatForPath(path)
		if !ok {
			fmt.Printf("%s: unsupported format\n", path)
			failed = true
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("%s: %v\n", path, err)
			failed = true
			continue
		}

		doc, warnings, err := theme.DecodeDocument(data, format)
		if err != nil {
			fmt.Printf("%s: %v\n", path, err)
			failed = true
			continue
		}
		for _, msg := range warnings {
			fmt.Printf("%s: warning: %s\n", path, msg)
		}

		report := tokens.Validate(doc)
		for _, msg := range report.Errors {
			fmt.Printf("%s: %s\n", path, msg)
		}
		if !report.Valid() {
			failed = true
		}

		if checkRefs {
			merged, err := tokens.Merge([]tokens.Document{doc})
			if err != nil {
				fmt.Printf("%s: %v\n", path, err)
				failed = true
			}
			for _, ref := range tokens.CheckReferences(merged) {
				fmt.Printf("%s: dangling reference %s\n", path, ref)
			}
		}
	}

	if failed {
		os.Exit(1)
	}
	fmt.Printf("Validated %d file(s)\n", len(args))
}

func runPreview(cmd *cobra.Command, args []string) {
	themeManager, cfg := cliManager(cmd)

	sel, err := resolveSelection(themeManager, model.Selection{Theme: cfg.DefaultTheme, Variant: cfg.DefaultVariant}, args)
	if err != nil {
		log.Fatalf("%v", err)
	}

	merged, _, err := themeManager.ResolveTheme(sel.Theme, sel.Variant)
	if err != nil {
		log.Fatalf("resolve %s/%s: %v", sel.Theme, sel.Variant, err)
	}

	fmt.Println(swatch.Header(sel.Theme, sel.Variant, merged.Dark))
	if scales := swatch.Scales(merged); scales != "" {
		fmt.Println(scales)
	} else {
		fmt.Println("no color scales in this variant")
	}
}

func runSnapshot(cmd *cobra.Command, args []string) {
	themeManager, cfg := cliManager(cmd)

	sel, err := resolveSelection(themeManager, model.Selection{Theme: cfg.DefaultTheme, Variant: cfg.DefaultVariant}, args)
	if err != nil {
		log.Fatalf("%v", err)
	}

	snap, err := theme.BuildSnapshot(themeManager, sel.Theme, sel.Variant)
	if err != nil {
		log.Fatalf("build snapshot: %v", err)
	}

	dataDirAbs, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		log.Fatalf("resolve data dir: %v", err)
	}
	store := storage.New(dataDirAbs)
	if err := store.EnsureDirs(); err != nil {
		log.Fatalf("ensure data dir: %v", err)
	}
	if err := store.SaveSnapshot(snap); err != nil {
		log.Fatalf("save snapshot: %v", err)
	}

	fmt.Printf("Captured snapshot %s of %s/%s (%d tokens)\n", snap.ID, snap.Theme, snap.Variant, snap.TokenCount)
}

func runConfigGenerate(cmd *cobra.Command, args []string) {
	// Ensure data directory exists and is absolute
	dataDirAbs, err := filepath.Abs(dataDir)
	if err != nil {
		log.Fatalf("resolve data dir: %v", err)
	}

	// Create default config
	cfg := config.Default()
	cfg.DataDir = dataDirAbs

	// Check if config file already exists
	cfgPath := filepath.Join(dataDirAbs, "themeplane.config")
	if _, err := os.Stat(cfgPath); err == nil {
		log.Fatalf("config file already exists: %s", cfgPath)
	}

	// Save default config
	if err := config.Save(cfg); err != nil {
		log.Fatalf("failed to save config: %v", err)
	}

	fmt.Printf("Generated default config file: %s\n", cfgPath)
}

// cliManager builds a theme manager for one-shot commands, honoring the
// config file and any --themes-dir override.
func cliManager(cmd *cobra.Command) (*theme.Manager, config.Config) {
	cfg, err := config.Load(dataDir)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cmd.Flags().Changed("themes-dir") {
		cfg.ThemesDir = themesDir
	}

	themeSource, _, err := themeSourceFor(cfg)
	if err != nil {
		log.Fatalf("resolve themes dir: %v", err)
	}
	themeManager, err := theme.NewManager(themeSource)
	if err != nil {
		log.Fatalf("initialize theme manager: %v", err)
	}
	return themeManager, cfg
}

// themeSourceFor picks the theme filesystem. An on-disk directory also
// returns its absolute path as the watch root; embedded themes return "".
func themeSourceFor(cfg config.Config) (fs.FS, string, error) {
	if cfg.ThemesDir != "" {
		abs, err := filepath.Abs(cfg.ThemesDir)
		if err != nil {
			return nil, "", err
		}
		if _, err := os.Stat(abs); err != nil {
			return nil, "", err
		}
		return os.DirFS(abs), abs, nil
	}

	sub, err := fs.Sub(themesFS, "themes")
	if err != nil {
		return nil, "", err
	}
	return sub, "", nil
}

// resolveSelection fills in a selection from positional args and config
// defaults, falling back to the first discovered theme and its default
// variant.
func resolveSelection(m *theme.Manager, initial model.Selection, args []string) (model.Selection, error) {
	sel := initial
	if len(args) > 0 {
		sel.Theme = args[0]
		sel.Variant = ""
	}
	if len(args) > 1 {
		sel.Variant = args[1]
	}

	if sel.Theme == "" {
		list := m.ListThemes()
		if len(list) == 0 {
			return model.Selection{}, fmt.Errorf("no themes available")
		}
		sel.Theme = list[0]
	}
	info := m.GetTheme(sel.Theme)
	if info == nil {
		return model.Selection{}, fmt.Errorf("unknown theme %q", sel.Theme)
	}
	if sel.Variant == "" {
		sel.Variant = m.DefaultVariant(sel.Theme)
	}
	if _, ok := info.Variants[sel.Variant]; !ok {
		return model.Selection{}, fmt.Errorf("unknown variant %q of theme %q", sel.Variant, sel.Theme)
	}
	return sel, nil
}

// localBind rewrites an all-interfaces listen address to loopback.
func localBind(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		return net.JoinHostPort("127.0.0.1", port)
	}
	return addr
}

func printListeningAddresses(addr string) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		log.Printf("listening on http://%s", addr)
		return
	}

	if host == "" || host == "0.0.0.0" || host == "::" {
		// Listening on all interfaces
		addrs, err := net.InterfaceAddrs()
		if err == nil {
			log.Println("listening on:")
			for _, a := range addrs {
				if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
					if ipnet.IP.To4() != nil {
						log.Printf("  http://%s:%s", ipnet.IP.String(), port)
					}
				}
			}
			// Also show localhost
			log.Printf("  http://localhost:%s", port)
			log.Printf("  http://127.0.0.1:%s", port)
		} else {
			log.Printf("listening on http://0.0.0.0:%s", port)
		}
	} else {
		log.Printf("listening on http://%s:%s", host, port)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
