package config

import (
	"testing"
	"time"
)

func TestValidateCronSchedule(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
		wantErr  bool
	}{
		{"daily morning", "0 8 * * *", false},
		{"every five minutes", "*/5 * * * *", false},
		{"weekday only", "30 7 * * 1-5", false},
		{"empty", "", true},
		{"too few fields", "0 8 *", true},
		{"six fields", "0 0 8 * * *", true},
		{"garbage", "once a day", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCronSchedule(tt.schedule)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCronSchedule(%q) error = %v, wantErr %v", tt.schedule, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTimezone(t *testing.T) {
	tests := []struct {
		name    string
		tz      string
		wantErr bool
	}{
		{"moscow", "Europe/Moscow", false},
		{"utc", "UTC", false},
		{"empty", "", true},
		{"unknown", "Mars/Olympus", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTimezone(tt.tz)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTimezone(%q) error = %v, wantErr %v", tt.tz, err, tt.wantErr)
			}
		})
	}
}

func TestValidateIntRange(t *testing.T) {
	if err := ValidateIntRange(5, 1, 10); err != nil {
		t.Errorf("5 in [1,10] should pass: %v", err)
	}
	if err := ValidateIntRange(1, 1, 10); err != nil {
		t.Errorf("bounds are inclusive: %v", err)
	}
	if err := ValidateIntRange(0, 1, 10); err == nil {
		t.Error("0 below range should fail")
	}
	if err := ValidateIntRange(11, 1, 10); err == nil {
		t.Error("11 above range should fail")
	}
}

func TestValidateDurationRange(t *testing.T) {
	min, max := time.Minute, time.Hour

	if err := ValidateDurationRange(10*time.Minute, min, max); err != nil {
		t.Errorf("10m in [1m,1h] should pass: %v", err)
	}
	if err := ValidateDurationRange(max, min, max); err != nil {
		t.Errorf("bounds are inclusive: %v", err)
	}
	if err := ValidateDurationRange(time.Second, min, max); err == nil {
		t.Error("1s below range should fail")
	}
	if err := ValidateDurationRange(2*time.Hour, min, max); err == nil {
		t.Error("2h above range should fail")
	}
	if err := ValidateDurationRange(time.Minute, max, min); err == nil {
		t.Error("inverted range should fail")
	}
}
