package cli

import (
	"path/filepath"
	"testing"
)

func testProfile(model string) *Profile {
	return &Profile{
		Model:              model,
		Labels:             []string{"silence", "unknown", "yes", "no"},
		DetectionThreshold: 200,
	}
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := LoadConfigWithPath(path)
	if err != nil {
		t.Fatalf("LoadConfigWithPath: %v", err)
	}
	if err := cfg.AddProfile("micro", testProfile("micro_speech.tflite")); err != nil {
		t.Fatalf("AddProfile: %v", err)
	}
	if err := cfg.UseProfile("micro"); err != nil {
		t.Fatalf("UseProfile: %v", err)
	}

	// Reload from disk and check everything survived.
	cfg2, err := LoadConfigWithPath(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	p, err := cfg2.GetCurrentProfile()
	if err != nil {
		t.Fatalf("GetCurrentProfile: %v", err)
	}
	if p.Name != "micro" || p.Model != "micro_speech.tflite" {
		t.Errorf("profile = %+v", p)
	}
	if len(p.Labels) != 4 || p.Labels[2] != "yes" {
		t.Errorf("labels = %v", p.Labels)
	}
	if p.DetectionThreshold != 200 {
		t.Errorf("threshold = %d", p.DetectionThreshold)
	}
}

func TestConfigResolveProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := LoadConfigWithPath(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg.AddProfile("a", testProfile("a.tflite"))
	cfg.AddProfile("b", testProfile("b.tflite"))
	cfg.UseProfile("a")

	p, err := cfg.ResolveProfile("")
	if err != nil || p.Name != "a" {
		t.Errorf("ResolveProfile(\"\") = %v, %v", p, err)
	}
	p, err = cfg.ResolveProfile("b")
	if err != nil || p.Name != "b" {
		t.Errorf("ResolveProfile(b) = %v, %v", p, err)
	}
	if _, err := cfg.ResolveProfile("missing"); err == nil {
		t.Error("ResolveProfile(missing) did not fail")
	}
}

func TestConfigDeleteProfileClearsCurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := LoadConfigWithPath(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg.AddProfile("only", testProfile("m.tflite"))
	cfg.UseProfile("only")
	if err := cfg.DeleteProfile("only"); err != nil {
		t.Fatalf("DeleteProfile: %v", err)
	}
	if cfg.CurrentProfile != "" {
		t.Errorf("CurrentProfile = %q after deleting it", cfg.CurrentProfile)
	}
	if _, err := cfg.GetCurrentProfile(); err == nil {
		t.Error("GetCurrentProfile succeeded with no profile")
	}
}

func TestProfileValidate(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		wantErr bool
	}{
		{
			name:    "valid",
			profile: Profile{Model: "m.tflite", Labels: []string{"silence", "yes"}},
		},
		{
			name:    "no model",
			profile: Profile{Labels: []string{"silence"}},
			wantErr: true,
		},
		{
			name:    "no labels",
			profile: Profile{Model: "m.tflite"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.profile.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
