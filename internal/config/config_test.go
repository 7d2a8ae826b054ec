package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %s, want 8080", cfg.Port)
	}
	if cfg.ReportHourUTC != 18 {
		t.Errorf("ReportHourUTC = %d, want 18", cfg.ReportHourUTC)
	}
	if cfg.JWTSecret == "" {
		t.Error("JWTSecret is empty")
	}
	if cfg.SMTP.From != "noreply@example.com" {
		t.Errorf("SMTP.From = %s, want default", cfg.SMTP.From)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "4000")
	t.Setenv("REPORT_HOUR_UTC", "6")
	t.Setenv("SMTP_HOST", "mail.example.com")

	cfg := Load()
	if cfg.Port != "4000" {
		t.Errorf("Port = %s, want 4000", cfg.Port)
	}
	if cfg.ReportHourUTC != 6 {
		t.Errorf("ReportHourUTC = %d, want 6", cfg.ReportHourUTC)
	}
	if cfg.SMTP.Host != "mail.example.com" {
		t.Errorf("SMTP.Host = %s, want mail.example.com", cfg.SMTP.Host)
	}
}

func TestReportHourRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		value string
		want  int
	}{
		{"24", 18},
		{"-1", 18},
		{"junk", 18},
		{"0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("REPORT_HOUR_UTC", tt.value)
			if got := Load().ReportHourUTC; got != tt.want {
				t.Errorf("ReportHourUTC = %d, want %d", got, tt.want)
			}
		})
	}
}
