// Command seed fills the log store with a day of synthetic honeypot traffic so
// the admin dashboard and report export have something to show.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/config"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/database"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/deception"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/logger"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/models"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/services"
)

var attackAgents = []string{
	"sqlmap/1.7.2#stable (https://sqlmap.org)",
	"curl/7.68.0",
	"Nmap Scripting Engine",
	"python-requests/2.31.0",
	"Mozilla/5.00 (Nikto/2.1.6)",
}

var attackQueries = []string{
	"' OR 1=1 --",
	"SELECT * FROM users UNION SELECT username, password FROM admins",
	"1; DROP TABLE employees; --",
	"admin'/*",
	"SELECT credit_card FROM customers WHERE '1'='1'",
}

type seedOptions struct {
	Count       int
	AttackRatio float64
	Span        time.Duration
	Seed        uint64
}

func main() {
	var opts seedOptions
	flag.IntVar(&opts.Count, "n", 500, "number of log records to write")
	flag.Float64Var(&opts.AttackRatio, "attacks", 0.1, "fraction of records that are attacks")
	flag.DurationVar(&opts.Span, "span", 24*time.Hour, "spread records over this much history")
	flag.Uint64Var(&opts.Seed, "seed", 0, "fake-data seed; 0 picks a random one")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Debug, os.Stdout)
	log := logger.Log()

	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		log.WithError(err).Fatal("connect database")
	}
	store := services.NewHoneypotStore(db)
	if err := store.Migrate(); err != nil {
		log.WithError(err).Fatal("migrate database")
	}

	records := buildRecords(opts, time.Now().UTC())
	ctx := context.Background()
	anomalies := 0
	for i := range records {
		if err := store.AppendLog(ctx, &records[i]); err != nil {
			log.WithError(err).Fatal("append log")
		}
		if records[i].Anomaly {
			anomalies++
		}
	}
	log.WithField("records", len(records)).WithField("anomalies", anomalies).Info("seeded synthetic traffic")
}

// buildRecords draws opts.Count records with timestamps spread evenly over
// the span ending at now. Attack records come from a small pool of sources
// so per-source rates look realistic.
func buildRecords(opts seedOptions, now time.Time) []models.LogRecord {
	if opts.Count <= 0 {
		return nil
	}
	f := gofakeit.New(opts.Seed)
	attackers := make([]string, 5)
	for i := range attackers {
		attackers[i] = f.IPv4Address()
	}

	step := opts.Span / time.Duration(opts.Count)
	start := now.Add(-opts.Span)
	out := make([]models.LogRecord, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		var rec models.LogRecord
		if f.Float64() < opts.AttackRatio {
			rec = attackRecord(f, attackers[f.Number(0, len(attackers)-1)])
		} else {
			rec = normalRecord(f)
		}
		rec.Timestamp = start.Add(time.Duration(i+1) * step)
		out = append(out, rec)
	}
	return out
}

func normalRecord(f *gofakeit.Faker) models.LogRecord {
	req := deception.Request{Method: "POST", UserAgent: f.UserAgent()}
	var value map[string]any
	if f.Bool() {
		req.Path = "/api/login"
		value = map[string]any{"username": f.Username(), "password": f.Password(true, true, true, false, false, 12)}
	} else {
		req.Path = "/api/query"
		value = map[string]any{"q": "list " + f.RandomString([]string{"projects", "employees", "tables"})}
	}
	return record(f, req, f.IPv4Address(), deception.StructuredBody{Value: value}, false)
}

func attackRecord(f *gofakeit.Faker, ip string) models.LogRecord {
	req := deception.Request{
		Method:    "POST",
		Path:      f.RandomString([]string{"/api/login", "/api/query"}),
		UserAgent: f.RandomString(attackAgents),
	}
	body := deception.StructuredBody{Value: map[string]any{"q": f.RandomString(attackQueries)}}
	rec := record(f, req, ip, body, true)
	rec.DecoyFile = "/download/credentials_backup.zip"
	return rec
}

func record(f *gofakeit.Faker, req deception.Request, ip string, body deception.Body, anomalous bool) models.LogRecord {
	p, _ := deception.Normalize(body)
	v := deception.Verdict{
		IsAnomaly: anomalous,
		Payload:   p.Text,
		Features: deception.FeatureVector{
			PayloadLength:    len(p.Text),
			UserAgentFlag:    boolInt(deception.IsScannerUserAgent(req.UserAgent)),
			SQLSignatureFlag: boolInt(deception.HasSQLSignature(p.Text)),
			SpecialCharCount: deception.CountSpecialChars(p.Text),
			NumParams:        p.NumParams,
		},
	}
	if anomalous {
		v.Profile = &deception.DeceptionProfile{Name: f.Name(), Purpose: deception.PurposeSuspicious}
	}
	return deception.NewLogRecord(req, ip, v)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
