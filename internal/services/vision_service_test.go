package services

import (
	"testing"
	"time"

	"github.com/Smear6uard/CloseOut/internal/config"
	"github.com/google/uuid"
)

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`["crack"]`, `["crack"]`},
		{"```json\n[\"crack\"]\n```", `["crack"]`},
		{"```\n{\"match\": true}\n```", `{"match": true}`},
		{"  [\"crack\"]  ", `["crack"]`},
	}
	for _, c := range cases {
		if got := stripCodeFences(c.in); got != c.want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDispatchWithoutAPIKeyIsNoOp(t *testing.T) {
	db := newTestDB(t)
	svc := NewVisionService(db, &config.Config{AITimeout: time.Second})

	// No API key configured: dispatch must not block or panic, and Stop must
	// return with nothing queued.
	svc.Start()
	svc.DispatchClassify(uuid.New(), "https://photos.example.com/defect.jpg")
	svc.DispatchCompare(uuid.New(), "https://photos.example.com/a.jpg", "https://photos.example.com/b.jpg")
	svc.Stop()
}
