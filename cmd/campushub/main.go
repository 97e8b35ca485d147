package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mkamran/campushub/internal/api"
	"github.com/mkamran/campushub/internal/db"
	"github.com/mkamran/campushub/internal/feed"
	"github.com/mkamran/campushub/internal/lifecycle"
	"github.com/mkamran/campushub/internal/metrics"
	"github.com/mkamran/campushub/internal/model"
	"github.com/mkamran/campushub/internal/objectstore"
	"github.com/mkamran/campushub/internal/roles"
	"github.com/mkamran/campushub/internal/store"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. INFO/WARN go to stdout, ERROR goes
// to stderr. If logPath is non-empty, all levels are also written to that file.
// Returns a cleanup function that closes the log file (if opened).
func setupLogger(logPath string) (func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

func main() {
	fs := flag.NewFlagSet("campushub", flag.ContinueOnError)

	var dbPath string
	fs.StringVar(&dbPath, "db", "campushub.sqlite3", "")
	fs.StringVar(&dbPath, "d", "campushub.sqlite3", "")

	var addr string
	fs.StringVar(&addr, "addr", ":8080", "")
	fs.StringVar(&addr, "a", ":8080", "")

	var adminEmails string
	fs.StringVar(&adminEmails, "admins", "admin@campushub.local", "")

	var jwtSecret string
	fs.StringVar(&jwtSecret, "jwt-secret", "", "")

	var storageDriver string
	fs.StringVar(&storageDriver, "storage", "fs", "")

	var imagesDir string
	fs.StringVar(&imagesDir, "images-dir", "images", "")

	var publicURL string
	fs.StringVar(&publicURL, "public-url", "", "")

	var deletePolicy string
	fs.StringVar(&deletePolicy, "complaint-delete-policy", string(lifecycle.ComplaintDeleteOwnerOnly), "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: campushub [flags]

Flags:
  -d, -db <path>                  SQLite database path (default: campushub.sqlite3)
  -a, -addr <host:port>           listen address (default: :8080)
  -admins <emails>                comma-separated admin emails (default: admin@campushub.local)
  -jwt-secret <secret>            JWT signing secret (default: generated, tokens reset on restart)
  -storage <fs|s3|memory>         image storage driver (default: fs)
  -images-dir <path>              image directory for the fs driver (default: images)
  -public-url <url>               public base URL for served images (default: /images)
  -complaint-delete-policy <p>    who may delete complaints, owner or admin (default: owner)
  -l, -log <path>                 log file path (default: no file, stdout/stderr only)
  -h, -help                       show this help and exit

The s3 driver reads CAMPUSHUB_S3_BUCKET, CAMPUSHUB_S3_REGION,
CAMPUSHUB_S3_ENDPOINT, CAMPUSHUB_S3_ACCESS_KEY, CAMPUSHUB_S3_SECRET_KEY
and CAMPUSHUB_S3_PUBLIC_URL from the environment.
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	closeLog, err := setupLogger(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	policy := lifecycle.ComplaintDeletePolicy(deletePolicy)
	if policy != lifecycle.ComplaintDeleteOwnerOnly && policy != lifecycle.ComplaintDeleteAdminOnly {
		fmt.Fprintf(os.Stderr, "invalid complaint delete policy: %s\n", deletePolicy)
		os.Exit(1)
	}

	admins := splitEmails(adminEmails)
	if len(admins) == 0 {
		fmt.Fprintln(os.Stderr, "at least one admin email is required")
		os.Exit(1)
	}

	// Check if DB exists, auto-init if not.
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		database, password, err := initDatabase(dbPath, admins[0])
		if err != nil {
			slog.Error("failed to initialize database", "error", err)
			os.Exit(1)
		}
		database.Close()

		printInitResult(dbPath, admins[0], password)
		fmt.Println()
	}

	database, err := db.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		slog.Error("failed to ensure database schema", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(database); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	slog.Info("database ready", "path", dbPath)

	if jwtSecret == "" {
		jwtSecret = generateSecret()
		slog.Warn("no -jwt-secret given, generated an ephemeral one; sessions will not survive restarts")
	}

	objects, servedImagesDir, err := openObjectStore(storageDriver, imagesDir, publicURL)
	if err != nil {
		slog.Error("failed to open image storage", "driver", storageDriver, "error", err)
		os.Exit(1)
	}
	slog.Info("image storage ready", "driver", storageDriver)

	// Flag-listed admins always count; accounts promoted in the users table
	// count too.
	resolver := roles.Chain{
		roles.NewStaticResolver(admins),
		&roles.StoreResolver{DB: database},
	}

	bus := feed.NewBus(feed.DefaultQueueSize)
	engine := lifecycle.New(database, resolver, bus, objects)

	mux := api.NewRouter(api.Config{
		DB:                    database,
		JWTSecret:             jwtSecret,
		Engine:                engine,
		Roles:                 resolver,
		Feed:                  bus,
		ComplaintDeletePolicy: policy,
		ImagesDir:             servedImagesDir,
	})

	handler := api.LoggingMiddleware(metrics.Instrument(mux))

	// WriteTimeout stays unset: the notification stream holds its response
	// open for the life of the subscription.
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped, closing database")
}

// openObjectStore builds the configured image storage backend. The second
// return value is the local directory to serve under /images/, empty for
// remote or in-memory drivers.
func openObjectStore(driver, imagesDir, publicURL string) (objectstore.Store, string, error) {
	switch driver {
	case "fs":
		base := publicURL
		if base == "" {
			base = "/images"
		}
		s, err := objectstore.NewFS(imagesDir, base)
		if err != nil {
			return nil, "", err
		}
		return s, imagesDir, nil
	case "s3":
		s, err := objectstore.OpenS3FromEnv(context.Background())
		if err != nil {
			return nil, "", err
		}
		return s, "", nil
	case "memory":
		return objectstore.NewMemory(), "", nil
	default:
		return nil, "", fmt.Errorf("unknown storage driver %q", driver)
	}
}

// initDatabase creates a new database, ensures the schema, and creates the
// first admin account.
func initDatabase(path, adminEmail string) (*sql.DB, string, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening database: %w", err)
	}

	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		os.Remove(path)
		return nil, "", fmt.Errorf("ensuring schema: %w", err)
	}

	password, err := generatePassword(16)
	if err != nil {
		database.Close()
		os.Remove(path)
		return nil, "", fmt.Errorf("generating password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		database.Close()
		os.Remove(path)
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}

	ctx := context.Background()
	_, err = store.CreateUser(ctx, database, adminEmail, string(hash), model.RoleAdmin)
	if err != nil {
		database.Close()
		os.Remove(path)
		return nil, "", fmt.Errorf("creating admin account: %w", err)
	}

	return database, password, nil
}

// printInitResult prints the database initialization result to stdout.
func printInitResult(dbPath, email, password string) {
	fmt.Printf("Database created: %s\n", dbPath)
	fmt.Println("Schema initialized.")
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Email:    %s\n", email)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password — it cannot be recovered.")
	fmt.Println("The admin can change it after logging in.")
}

func splitEmails(s string) []string {
	var out []string
	for _, e := range strings.Split(s, ",") {
		e = store.NormalizeEmail(e)
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}

// generateSecret returns a random hex string suitable for JWT signing.
func generateSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
