package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/models"
)

func TestAlertService_NotifyAnomaly(t *testing.T) {
	svc := NewAlertService([]string{"generic://hooks.example/a", "discord://token@id"})
	var mu sync.Mutex
	var sent []string
	svc.send = func(url, message string) error {
		mu.Lock()
		defer mu.Unlock()
		sent = append(sent, url)
		assert.Contains(t, message, "203.0.113.9")
		return nil
	}

	svc.NotifyAnomaly(models.LogRecord{IP: "203.0.113.9", Method: "POST", Path: "/api/query", Anomaly: true, DecoyFile: "http://x/download/credentials_backup.zip"})
	svc.Wait()

	assert.ElementsMatch(t, []string{"generic://hooks.example/a", "discord://token@id"}, sent)
}

func TestAlertService_SkipsNormalTrafficAndTolerantOfFailures(t *testing.T) {
	svc := NewAlertService([]string{"generic://hooks.example/a"})
	calls := 0
	svc.send = func(url, message string) error {
		calls++
		return errors.New("unreachable")
	}

	svc.NotifyAnomaly(models.LogRecord{IP: "192.0.2.1", Anomaly: false})
	svc.Wait()
	assert.Zero(t, calls)

	svc.NotifyAnomaly(models.LogRecord{IP: "192.0.2.1", Anomaly: true})
	svc.Wait()
	assert.Equal(t, 1, calls)

	assert.False(t, NewAlertService(nil).Enabled())
}

func TestAlertService_CooldownPerSource(t *testing.T) {
	svc := NewAlertService([]string{"generic://hooks.example/a"})
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	var mu sync.Mutex
	calls := map[string]int{}
	svc.send = func(url, message string) error {
		mu.Lock()
		defer mu.Unlock()
		for _, ip := range []string{"203.0.113.5", "203.0.113.6"} {
			if strings.Contains(message, ip) {
				calls[ip]++
			}
		}
		return nil
	}

	// A sqlmap run: hundreds of anomalous hits from one source.
	for i := 0; i < 300; i++ {
		svc.NotifyAnomaly(models.LogRecord{IP: "203.0.113.5", Anomaly: true})
	}
	svc.NotifyAnomaly(models.LogRecord{IP: "203.0.113.6", Anomaly: true})
	svc.Wait()
	assert.Equal(t, 1, calls["203.0.113.5"])
	assert.Equal(t, 1, calls["203.0.113.6"])

	now = now.Add(DefaultAlertCooldown)
	svc.NotifyAnomaly(models.LogRecord{IP: "203.0.113.5", Anomaly: true})
	svc.Wait()
	assert.Equal(t, 2, calls["203.0.113.5"])
}

func TestAlertService_DropsWhenSaturated(t *testing.T) {
	svc := NewAlertService([]string{"generic://hooks.example/a"})
	release := make(chan struct{})
	var mu sync.Mutex
	calls := 0
	svc.send = func(url, message string) error {
		mu.Lock()
		calls++
		mu.Unlock()
		<-release
		return nil
	}

	for i := 0; i < maxInFlightAlerts+5; i++ {
		svc.NotifyAnomaly(models.LogRecord{IP: fmt.Sprintf("198.51.100.%d", i), Anomaly: true})
	}
	assert.Len(t, svc.sem, maxInFlightAlerts)
	close(release)
	svc.Wait()
	assert.Equal(t, maxInFlightAlerts, calls)
}

func TestFormatAlert_SanitizesAttackerInput(t *testing.T) {
	msg := FormatAlert(models.LogRecord{IP: "192.0.2.1", Method: "POST", Path: "/api/login\n[ok]", UserAgent: "curl/7.68", Payload: "a\x00b", PayloadLen: 3})
	assert.Contains(t, msg, "/api/login [ok]")
	assert.Contains(t, msg, "curl/7.68")
	assert.NotContains(t, msg, "\x00")
	assert.Equal(t, "discord", serviceName("discord://token@id"))
}
