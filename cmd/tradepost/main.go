package main

import (
	"archive/tar"
	"bufio"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mcastor/tradepost/internal/browser"
	"github.com/mcastor/tradepost/internal/config"
	"github.com/mcastor/tradepost/internal/prefs"
	"github.com/mcastor/tradepost/internal/session"
	"github.com/mcastor/tradepost/internal/state"
	"github.com/mcastor/tradepost/internal/tui"
	"github.com/mcastor/tradepost/pkg/client"
	"github.com/mcastor/tradepost/pkg/domain"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "version", "-v":
			fmt.Println("tradepost " + version)
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		case "terms":
			return openLegal("terms")
		case "privacy":
			return openLegal("privacy")
		case "login":
			return runLogin(cfg)
		case "signup":
			return runSignup(cfg)
		case "logout":
			return runLogout(cfg)
		case "update":
			return runUpdate()
		case "--update-done":
			if len(os.Args) >= 4 {
				printUpdateSuccess(os.Args[2], os.Args[3])
			}
			return nil
		}
	}

	sess, err := session.Open(cfg.DataDir)
	if err != nil {
		return err
	}

	// TRADEPOST_TOKEN overrides the stored session for scripted runs.
	var tokens client.TokenSource = sess
	if cfg.Token != "" {
		tokens = client.StaticToken(cfg.Token)
	}

	if tokens.Token() == "" {
		printTradepostGreeting()
		return nil
	}

	c := client.New(cfg.APIURL, tokens).WithTimeout(cfg.HTTPTimeout)
	// Only force re-login on actual auth failures (401), not transient errors.
	if _, err := c.CurrentUser(context.Background()); err != nil {
		if client.IsStatus(err, 401) {
			printTradepostGreeting()
			return nil
		}
		// Network/server error: launch the TUI anyway, it retries internally.
	}

	return launchTUI(cfg, sess, c)
}

func launchTUI(cfg config.Config, sess *session.Session, c *client.Client) error {
	comics := state.NewComics(c, sess)
	offers := state.NewOffers(c, sess)
	profile := state.NewProfile(c, sess)

	p := prefs.Load(cfg.PrefsPath())
	app := tui.NewApp(comics, offers, profile, sess, p, cfg.PrefsPath()).WithVersion(version)

	prog := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

// promptLine reads one line from stdin with a label.
func promptLine(r *bufio.Reader, label string) (string, error) {
	fmt.Printf("  %s: ", label)
	line, err := r.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read %s: %w", label, err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echoing it.
func promptPassword(label string) (string, error) {
	fmt.Printf("  %s: ", label)
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read %s: %w", label, err)
	}
	return string(pw), nil
}

func runLogin(cfg config.Config) error {
	r := bufio.NewReader(os.Stdin)
	username, err := promptLine(r, "username")
	if err != nil {
		return err
	}
	password, err := promptPassword("password")
	if err != nil {
		return err
	}

	c := client.New(cfg.APIURL, client.StaticToken("")).WithTimeout(cfg.HTTPTimeout)
	token, err := c.Login(context.Background(), username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	sess, err := session.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	if err := sess.Login(token); err != nil {
		return err
	}

	authed := client.New(cfg.APIURL, sess).WithTimeout(cfg.HTTPTimeout)
	me, err := authed.CurrentUser(context.Background())
	if err != nil {
		fmt.Printf("Token saved but verification failed: %v\n", err)
		return nil
	}
	sess.CacheProfile(me) //nolint:errcheck // cache is a warm-start optimization
	fmt.Printf("Logged in as @%s\n\n", me.Username)

	return launchTUI(cfg, sess, authed)
}

func runSignup(cfg config.Config) error {
	r := bufio.NewReader(os.Stdin)
	var draft domain.SignUpDraft
	var err error

	if draft.Name, err = promptLine(r, "name"); err != nil {
		return err
	}
	if draft.LastName, err = promptLine(r, "last name"); err != nil {
		return err
	}
	if draft.Email, err = promptLine(r, "email"); err != nil {
		return err
	}
	if draft.Phone, err = promptLine(r, "phone"); err != nil {
		return err
	}
	if draft.Username, err = promptLine(r, "username (8-12 chars)"); err != nil {
		return err
	}
	if draft.Password, err = promptPassword("password"); err != nil {
		return err
	}
	if draft.ConfirmPassword, err = promptPassword("confirm password"); err != nil {
		return err
	}

	if problem := draft.Validate(); problem != "" {
		return fmt.Errorf("signup: %s", problem)
	}

	c := client.New(cfg.APIURL, client.StaticToken("")).WithTimeout(cfg.HTTPTimeout)
	msg, err := c.CreateUser(context.Background(), draft)
	if err != nil {
		return fmt.Errorf("signup failed: %w", err)
	}
	if msg == "" {
		msg = "Account created."
	}
	fmt.Printf("%s\nNext: tradepost login\n", msg)
	return nil
}

func runLogout(cfg config.Config) error {
	sess, err := session.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	if !sess.IsAuthenticated() {
		fmt.Println("Already logged out.")
		return nil
	}
	if err := sess.Logout(); err != nil {
		return err
	}
	fmt.Println("Logged out.")
	return nil
}

type ghRelease struct {
	TagName string `json:"tag_name"`
	Assets  []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// isNewerVersion returns true if latest is a newer semver than current.
func isNewerVersion(latest, current string) bool {
	parse := func(v string) (int, int, int) {
		v = strings.TrimPrefix(v, "v")
		parts := strings.SplitN(v, ".", 3)
		atoi := func(s string) int {
			n, _ := strconv.Atoi(s) //nolint:errcheck // zero-value on parse failure is desired
			return n
		}
		var maj, min, patch int
		if len(parts) > 0 {
			maj = atoi(parts[0])
		}
		if len(parts) > 1 {
			min = atoi(parts[1])
		}
		if len(parts) > 2 {
			patch = atoi(parts[2])
		}
		return maj, min, patch
	}
	lMaj, lMin, lPatch := parse(latest)
	cMaj, cMin, cPatch := parse(current)
	if lMaj != cMaj {
		return lMaj > cMaj
	}
	if lMin != cMin {
		return lMin > cMin
	}
	return lPatch > cPatch
}

func runUpdate() error {
	if version == "dev" {
		fmt.Println("dev build — install a release to enable updates")
		return nil
	}

	// Resolve the real binary path (follow symlinks).
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("runUpdate: find executable: %w", err)
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return fmt.Errorf("runUpdate: resolve symlinks: %w", err)
	}

	// Fetch latest release from GitHub.
	httpClient := &http.Client{Timeout: 15 * time.Second}
	resp, err := httpClient.Get("https://api.github.com/repos/mcastor/tradepost/releases/latest")
	if err != nil {
		return fmt.Errorf("runUpdate: check for updates: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("runUpdate: GitHub API returned %s", resp.Status)
	}

	var release ghRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return fmt.Errorf("runUpdate: parse release: %w", err)
	}

	latestVersion := strings.TrimPrefix(release.TagName, "v")
	currentVersion := strings.TrimPrefix(version, "v")
	if !isNewerVersion(latestVersion, currentVersion) {
		printAlreadyCurrent("v" + currentVersion)
		return nil
	}

	// Find the right asset for this platform.
	tarballName := fmt.Sprintf("tradepost_%s_%s.tar.gz", runtime.GOOS, runtime.GOARCH)
	var tarballURL, checksumsURL string
	for _, a := range release.Assets {
		switch a.Name {
		case tarballName:
			tarballURL = a.BrowserDownloadURL
		case "checksums.txt":
			checksumsURL = a.BrowserDownloadURL
		}
	}
	if tarballURL == "" {
		return fmt.Errorf("runUpdate: no asset %s in release %s", tarballName, release.TagName)
	}

	// Download to temp dir.
	tmpDir, err := os.MkdirTemp("", "tradepost-update-*")
	if err != nil {
		return fmt.Errorf("runUpdate: create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir) //nolint:errcheck

	tarballPath := filepath.Join(tmpDir, tarballName)
	if err := downloadFile(httpClient, tarballURL, tarballPath); err != nil {
		return fmt.Errorf("runUpdate: download tarball: %w", err)
	}

	// Verify checksum (mandatory).
	if checksumsURL == "" {
		return fmt.Errorf("runUpdate: release missing checksums.txt — aborting update")
	}
	checksumsPath := filepath.Join(tmpDir, "checksums.txt")
	if err := downloadFile(httpClient, checksumsURL, checksumsPath); err != nil {
		return fmt.Errorf("runUpdate: download checksums: %w", err)
	}
	if err := verifyChecksum(tarballPath, checksumsPath, tarballName); err != nil {
		return fmt.Errorf("runUpdate: %w", err)
	}

	// Extract the tradepost binary from the tarball.
	newBinaryPath := filepath.Join(tmpDir, "tradepost")
	if err := extractBinary(tarballPath, newBinaryPath); err != nil {
		return fmt.Errorf("runUpdate: extract: %w", err)
	}

	// Atomic replace: write to .new, then rename over the original.
	stagePath := execPath + ".new"
	defer os.Remove(stagePath) //nolint:errcheck

	src, err := os.Open(newBinaryPath)
	if err != nil {
		return fmt.Errorf("runUpdate: open extracted binary: %w", err)
	}
	defer src.Close() //nolint:errcheck

	dst, err := os.OpenFile(stagePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
	if err != nil {
		if os.IsPermission(err) {
			return fmt.Errorf("permission denied writing to %s — try with sudo", filepath.Dir(execPath))
		}
		return fmt.Errorf("runUpdate: create staged binary: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close() //nolint:errcheck
		return fmt.Errorf("runUpdate: write staged binary: %w", err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("runUpdate: close staged binary: %w", err)
	}

	if err := os.Rename(stagePath, execPath); err != nil {
		if os.IsPermission(err) {
			return fmt.Errorf("permission denied replacing %s — try with sudo", execPath)
		}
		return fmt.Errorf("runUpdate: replace binary: %w", err)
	}

	// Re-exec into the NEW binary so its updated code renders the success message.
	// The running process still has the old code in memory after os.Rename.
	execErr := syscall.Exec(execPath, []string{"tradepost", "--update-done", "v" + currentVersion, "v" + latestVersion}, os.Environ())
	if execErr != nil {
		// Fallback if exec fails (e.g., Windows).
		printUpdateSuccess("v"+currentVersion, "v"+latestVersion)
	}
	return nil
}

func downloadFile(client *http.Client, url, dest string) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %s from %s", resp.Status, url)
	}
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()                   //nolint:errcheck
	const maxDownloadSize = 100 << 20 // 100 MB
	_, err = io.Copy(f, io.LimitReader(resp.Body, maxDownloadSize))
	return err
}

func verifyChecksum(filePath, checksumsPath, fileName string) error {
	data, err := os.ReadFile(checksumsPath)
	if err != nil {
		return fmt.Errorf("read checksums: %w", err)
	}
	var expected string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.Contains(line, fileName) {
			parts := strings.Fields(line)
			if len(parts) >= 1 {
				expected = parts[0]
				break
			}
		}
	}
	if expected == "" {
		return fmt.Errorf("no checksum found for %s", fileName)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close() //nolint:errcheck

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("hash file: %w", err)
	}
	actual := hex.EncodeToString(h.Sum(nil))
	if actual != expected {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expected, actual)
	}
	return nil
}

func extractBinary(tarballPath, dest string) error {
	f, err := os.Open(tarballPath)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("gzip reader: %w", err)
	}
	defer gz.Close() //nolint:errcheck

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("tar read: %w", err)
		}
		// Only extract the tradepost binary; ignore everything else.
		if filepath.Base(hdr.Name) == "tradepost" && hdr.Typeflag == tar.TypeReg {
			out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
			if err != nil {
				return err
			}
			const maxBinarySize = 200 << 20 // 200 MB
			if _, err := io.Copy(out, io.LimitReader(tr, maxBinarySize)); err != nil {
				out.Close() //nolint:errcheck
				return err
			}
			return out.Close()
		}
	}
	return fmt.Errorf("tradepost binary not found in tarball")
}

func openLegal(page string) error {
	url := "https://trademaster.lat/" + page
	if err := browser.Open(url); err != nil {
		fmt.Println(url)
	}
	return nil
}
