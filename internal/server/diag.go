package server

import (
	"encoding/json"
	"net/http"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// Diagnose inspects the strip and reports anything that explains a dark or
// dim strip.
func (s *Server) Diagnose() []Diagnostic {
	var out []Diagnostic
	drv := s.strip.Driver()
	if drv == "sim" || drv == "console" {
		out = append(out, Diagnostic{
			Severity:       Info,
			Code:           "driver.virtual",
			Summary:        "frames are not sent to hardware",
			Evidence:       map[string]any{"driver": drv},
			LikelyCauses:   []string{"driver set to sim or console", "pwm/spi unavailable, fell back to sim"},
			SuggestedFixes: []string{"run on the Pi as root with --driver pwm", "build with -tags rpi and libws2811 installed"},
		})
	}

	b := s.strip.Brightness()
	if b == 0 {
		out = append(out, Diagnostic{
			Severity:       Warn,
			Code:           "brightness.zero",
			Summary:        "last frame was rendered at zero brightness",
			SuggestedFixes: []string{`send {"op":"brightness","value":255} on /control`},
		})
	}

	lit := 0
	for _, v := range s.strip.Snapshot() {
		if v != 0 {
			lit++
		}
	}
	if lit == 0 {
		out = append(out, Diagnostic{
			Severity: Info,
			Code:     "frame.dark",
			Summary:  "every LED in the buffer is off",
			Evidence: map[string]any{"count": s.strip.Len()},
		})
	}
	return out
}

func (s *Server) HandleDiag(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"diagnostics": s.Diagnose()})
}
