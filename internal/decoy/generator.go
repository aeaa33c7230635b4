// Package decoy authors the fake data artifacts served to attackers: employee
// and project tables plus a zipped credential dump seeded with honeytokens.
package decoy

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/logger"
)

// Artifact file names, also used as download names.
const (
	EmployeesFile   = "decoy_employees.csv"
	ProjectsFile    = "decoy_projects.csv"
	CredentialsCSV  = "credentials.csv" // entry name inside the bundle
	CredentialsFile = "credentials_backup.zip"

	// DownloadPrefix is the route under which artifacts are served.
	DownloadPrefix = "/download/"
)

// Row counts advertised in the table listing.
const (
	EmployeeRows   = 200
	ProjectRows    = 50
	CredentialRows = 50
)

// HoneytokenPrefix marks every planted secret so its reuse can be recognised.
const HoneytokenPrefix = "HONEY_"

var (
	ErrArtifactNotFound  = errors.New("decoy artifact not found")
	ErrBundleUnavailable = errors.New("credential bundle unavailable")
)

// Generator writes decoy artifacts into a single directory. Writes go to a
// temporary file that is renamed into place, so concurrent regenerations are
// safe and the last one wins.
type Generator struct {
	dir   string
	mu    sync.Mutex // guards faker
	faker *gofakeit.Faker
	title cases.Caser
}

// NewGenerator prepares dir and seeds the fake-data source. A zero seed
// draws a random one.
func NewGenerator(dir string, seed uint64) (*Generator, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure decoy directory: %w", err)
	}
	return &Generator{
		dir:   dir,
		faker: gofakeit.New(seed),
		title: cases.Title(language.English),
	}, nil
}

// Dir returns the artifact directory.
func (g *Generator) Dir() string { return g.dir }

// Name returns a fake display name, used for deception profiles.
func (g *Generator) Name() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.faker.Name()
}

// FabricatedRow returns one plausible customer row for a query response.
func (g *Generator) FabricatedRow(id int) map[string]any {
	g.mu.Lock()
	first, last := g.faker.FirstName(), g.faker.LastName()
	g.mu.Unlock()
	return map[string]any{
		"id":    id,
		"name":  first + " " + last,
		"email": strings.ToLower(first+"."+last) + "@company.internal",
	}
}

// GenerateEmployees writes the employee table.
func (g *Generator) GenerateEmployees(ctx context.Context, n int) (string, error) {
	rows := [][]string{{"id", "name", "email", "dept", "role", "phone", "join_date", "salary", "password"}}
	now := time.Now()
	g.mu.Lock()
	for i := 1; i <= n; i++ {
		first, last := g.faker.FirstName(), g.faker.LastName()
		rows = append(rows, []string{
			strconv.Itoa(i),
			first + " " + last,
			strings.ToLower(first+"."+last) + "@company.internal",
			g.faker.RandomString([]string{"IT", "Ops", "HR", "R&D"}),
			g.faker.JobTitle(),
			g.faker.Phone(),
			g.faker.DateRange(now.AddDate(-5, 0, 0), now).Format("2006-01-02"),
			strconv.Itoa(g.faker.Number(20000, 250000)),
			g.faker.Password(true, true, true, false, false, 10),
		})
	}
	g.mu.Unlock()
	return g.writeCSV(ctx, EmployeesFile, rows)
}

// GenerateProjects writes the project table with planted repository tokens.
func (g *Generator) GenerateProjects(ctx context.Context, n int) (string, error) {
	rows := [][]string{{"id", "title", "description", "owner_email", "repo_url", "secret_token"}}
	g.mu.Lock()
	for i := 1; i <= n; i++ {
		rows = append(rows, []string{
			strconv.Itoa(i),
			g.title.String(g.faker.BS()) + " " + g.title.String(g.faker.Noun()),
			g.faker.HackerPhrase(),
			strings.ToLower(g.faker.Username()) + "@company.internal",
			fmt.Sprintf("https://git.internal/%s/%s", strings.ToLower(g.faker.Username()), strings.ToLower(g.faker.Noun())),
			HoneytokenPrefix + strings.ToUpper(g.faker.Lexify("????????")),
		})
	}
	g.mu.Unlock()
	return g.writeCSV(ctx, ProjectsFile, rows)
}

// RegenerateCredentialBundle rewrites the zipped credential dump and returns
// its download reference (a path relative to the service root).
func (g *Generator) RegenerateCredentialBundle(ctx context.Context) (string, error) {
	rows := [][]string{{"service", "username", "password", "notes"}}
	g.mu.Lock()
	for i := 0; i < CredentialRows; i++ {
		rows = append(rows, []string{
			strings.ToLower(g.faker.Noun()) + ".internal",
			strings.ToLower(g.faker.Username()),
			g.faker.Password(true, true, true, true, false, 12),
			"Backup token - " + HoneytokenPrefix + strings.ToUpper(g.faker.Lexify("???")),
		})
	}
	g.mu.Unlock()

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.WriteAll(rows); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBundleUnavailable, err)
	}
	err := g.atomicWrite(ctx, CredentialsFile, func(w io.Writer) error {
		zw := zip.NewWriter(w)
		f, err := zw.CreateHeader(&zip.FileHeader{Name: CredentialsCSV, Method: zip.Deflate, Modified: time.Now()})
		if err != nil {
			return err
		}
		if _, err := f.Write(buf.Bytes()); err != nil {
			return err
		}
		return zw.Close()
	})
	if err != nil {
		logger.Log().WithError(err).WithField("file", CredentialsFile).Error("failed to generate credential bundle")
		return "", fmt.Errorf("%w: %v", ErrBundleUnavailable, err)
	}
	logger.Log().WithField("file", CredentialsFile).Debug("regenerated credential bundle")
	return DownloadPrefix + CredentialsFile, nil
}

// GenerateAll rewrites every artifact and returns the file names produced.
// It keeps going after a failure so one broken table does not block the rest.
func (g *Generator) GenerateAll(ctx context.Context) ([]string, error) {
	var files []string
	var errs []error
	if _, err := g.GenerateEmployees(ctx, EmployeeRows); err != nil {
		errs = append(errs, err)
	} else {
		files = append(files, EmployeesFile)
	}
	if _, err := g.GenerateProjects(ctx, ProjectRows); err != nil {
		errs = append(errs, err)
	} else {
		files = append(files, ProjectsFile)
	}
	if _, err := g.RegenerateCredentialBundle(ctx); err != nil {
		errs = append(errs, err)
	} else {
		files = append(files, CredentialsFile)
	}
	return files, errors.Join(errs...)
}

// EnsureAll creates any artifact missing from disk.
func (g *Generator) EnsureAll(ctx context.Context) error {
	var errs []error
	if !g.exists(EmployeesFile) {
		if _, err := g.GenerateEmployees(ctx, EmployeeRows); err != nil {
			errs = append(errs, err)
		}
	}
	if !g.exists(ProjectsFile) {
		if _, err := g.GenerateProjects(ctx, ProjectRows); err != nil {
			errs = append(errs, err)
		}
	}
	if !g.exists(CredentialsFile) {
		if _, err := g.RegenerateCredentialBundle(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Table describes one advertised decoy table.
type Table struct {
	Count       int    `json:"count"`
	DownloadURL string `json:"download_url"`
	LastUpdated string `json:"last_updated"`
}

// Tables lists the advertised decoy tables with absolute download URLs.
func (g *Generator) Tables(baseURL string) map[string]Table {
	base := strings.TrimRight(baseURL, "/")
	entry := func(file string, count int) Table {
		updated := time.Now().UTC()
		if info, err := os.Stat(filepath.Join(g.dir, file)); err == nil {
			updated = info.ModTime().UTC()
		}
		return Table{Count: count, DownloadURL: base + DownloadPrefix + file, LastUpdated: updated.Format(time.RFC3339)}
	}
	return map[string]Table{
		"employees":   entry(EmployeesFile, EmployeeRows),
		"projects":    entry(ProjectsFile, ProjectRows),
		"credentials": entry(CredentialsFile, CredentialRows),
	}
}

// Path resolves a requested download name to a file inside the decoy
// directory. Only the base name is honoured, so traversal attempts resolve
// to a (usually missing) file in dir.
func (g *Generator) Path(name string) (string, error) {
	safe := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if safe == "." || safe == "/" || safe == ".." || strings.HasPrefix(safe, ".") {
		return "", ErrArtifactNotFound
	}
	full := filepath.Join(g.dir, safe)
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return "", ErrArtifactNotFound
	}
	return full, nil
}

func (g *Generator) exists(name string) bool {
	_, err := os.Stat(filepath.Join(g.dir, name))
	return err == nil
}

func (g *Generator) writeCSV(ctx context.Context, name string, rows [][]string) (string, error) {
	err := g.atomicWrite(ctx, name, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.WriteAll(rows); err != nil {
			return err
		}
		return cw.Error()
	})
	if err != nil {
		logger.Log().WithError(err).WithField("file", name).Error("failed to generate decoy table")
		return "", err
	}
	return filepath.Join(g.dir, name), nil
}

func (g *Generator) atomicWrite(ctx context.Context, name string, fill func(io.Writer) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(g.dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := fill(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(g.dir, name)); err != nil {
		return fmt.Errorf("install %s: %w", name, err)
	}
	return nil
}
