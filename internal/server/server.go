// internal/server/server.go
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"storyidx/internal/scaffold"
	"storyidx/internal/story"
	"storyidx/internal/util"
)

const debounceDuration = 500 * time.Millisecond

// Options configures the development server.
type Options struct {
	Port int
	// SiteDir is served over HTTP; it normally holds the reader front-end
	// with the content directory inside it.
	SiteDir string
	// WatchDirs are watched non-recursively for content changes.
	WatchDirs []string
	// IgnoreFile changes also trigger a rebuild.
	IgnoreFile string
	Logger     *slog.Logger
}

// Run builds once, then serves opts.SiteDir and rebuilds whenever a content
// file changes, telling connected browsers to reload. It returns when ctx
// is cancelled or the listener fails.
func Run(ctx context.Context, opts Options, buildFunc func() error) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err := buildFunc(); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}

	hub := newHub(logger)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := ensureDirs(opts.WatchDirs); err != nil {
		return fmt.Errorf("could not create watched directory: %w", err)
	}
	for _, dir := range opts.WatchDirs {
		dir = filepath.Clean(dir)
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		fmt.Printf("Watching directory: %s\n", dir)
	}

	go watchForChanges(ctx, watcher, hub, buildFunc, opts.IgnoreFile, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(hub, w, r)
	})
	fileServer := http.FileServer(http.Dir(opts.SiteDir))
	mux.Handle("/", liveReloadWrapper(fileServer))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	fmt.Printf("Serving %s on http://localhost%s\n", opts.SiteDir, srv.Addr)
	fmt.Println("Press Ctrl+C to stop")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// shouldRebuild reports whether a change to name can alter the index.
// Generated files (index, notes, temp files) never match, so a rebuild
// does not retrigger itself.
func shouldRebuild(name, ignoreFile string) bool {
	base := filepath.Base(name)
	if util.IsTempFile(base) || scaffold.IsNoteFile(base) {
		return false
	}
	if ignoreFile != "" && base == ignoreFile {
		return true
	}
	for _, ext := range story.Extensions {
		if strings.HasSuffix(base, ext) {
			return true
		}
	}
	return false
}

func watchForChanges(ctx context.Context, watcher *fsnotify.Watcher, hub *Hub, buildFunc func() error, ignoreFile string, logger *slog.Logger) {
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			// Create, write, remove and rename cover every editor save strategy.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !shouldRebuild(event.Name, ignoreFile) {
				continue
			}
			logger.Debug("change detected", "file", event.Name, "op", event.Op.String())
			pending = time.After(debounceDuration)
		case <-pending:
			pending = nil
			logger.Info("rebuilding index")
			if err := buildFunc(); err != nil {
				logger.Error("error rebuilding index", "error", err)
				continue
			}
			hub.broadcastMessage([]byte("reload"))
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}

func liveReloadWrapper(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")

		isHTML := strings.HasSuffix(r.URL.Path, ".html") || strings.HasSuffix(r.URL.Path, "/")
		if !isHTML {
			next.ServeHTTP(w, r)
			return
		}

		iw := newInterceptingWriter(w)
		next.ServeHTTP(iw, r)

		for key, values := range iw.Header() {
			for _, value := range values {
				w.Header().Add(key, value)
			}
		}

		bodyBytes := iw.body.Bytes()
		if iw.statusCode != http.StatusOK {
			w.WriteHeader(iw.statusCode)
			w.Write(bodyBytes)
			return
		}

		injectedBody := bytes.Replace(bodyBytes, []byte("</body>"), []byte(liveReloadScript+"</body>"), 1)
		w.Header().Set("Content-Length", fmt.Sprint(len(injectedBody)))
		w.WriteHeader(iw.statusCode)
		w.Write(injectedBody)
	})
}

type interceptingWriter struct {
	http.ResponseWriter
	body       *bytes.Buffer
	statusCode int
	header     http.Header
}

func newInterceptingWriter(w http.ResponseWriter) *interceptingWriter {
	return &interceptingWriter{
		ResponseWriter: w,
		body:           new(bytes.Buffer),
		header:         make(http.Header),
		statusCode:     http.StatusOK,
	}
}

func (iw *interceptingWriter) Header() http.Header {
	return iw.header
}

func (iw *interceptingWriter) Write(b []byte) (int, error) {
	return iw.body.Write(b)
}

func (iw *interceptingWriter) WriteHeader(statusCode int) {
	iw.statusCode = statusCode
}

const liveReloadScript = `
<script>
  (function() {
    let socket = new WebSocket("ws://" + window.location.host + "/ws");
    socket.onmessage = function(event) {
      if (event.data === "reload") {
        window.location.reload();
      }
    };
    socket.onerror = function() {
      console.error("Live reload connection error. Please restart 'storyidx serve'.");
    };
  })();
</script>
`

// ensureDirs creates the watched directories so the watcher can attach to
// a project that has not been built yet.
func ensureDirs(dirs []string) error {
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}
