package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/prayoverus/go-prayer-backend/internal/domain"
)

// registerGroupRoutes returns the shared test router; the group endpoints are
// mounted there alongside the prayer routes.
func registerGroupRoutes(t *testing.T) *gin.Engine {
	t.Helper()
	r, _, _ := newTestRouter(t)
	return r
}

func decodeGroup(t *testing.T, w *httptest.ResponseRecorder) domain.Group {
	t.Helper()
	var g domain.Group
	if err := json.Unmarshal(w.Body.Bytes(), &g); err != nil {
		t.Fatalf("decode group from %q: %v", w.Body.String(), err)
	}
	return g
}

func TestCreateGroup(t *testing.T) {
	r := registerGroupRoutes(t)

	w := doJSON(t, r, http.MethodPost, "/groups", gin.H{"name": "morning circle"}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	g := decodeGroup(t, w)
	if g.Name != "Morning Circle" {
		t.Fatalf("name not normalized: %q", g.Name)
	}
}

func TestListGroups_OwnerEnrolled(t *testing.T) {
	r := registerGroupRoutes(t)

	doJSON(t, r, http.MethodPost, "/groups", gin.H{"name": "Circle"}, nil)

	w := doJSON(t, r, http.MethodGet, "/groups", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp GroupListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(resp.Groups))
	}
}

func TestJoinGroup(t *testing.T) {
	r := registerGroupRoutes(t)

	g := decodeGroup(t, doJSON(t, r, http.MethodPost, "/groups", gin.H{"name": "Circle"}, nil))

	// Another user joins.
	w := doJSON(t, r, http.MethodPost, "/groups/"+g.ID+"/members", nil,
		map[string]string{"X-User-ID": "u2"})
	if w.Code != http.StatusNoContent {
		t.Fatalf("join status = %d", w.Code)
	}
	// Joining twice conflicts.
	w = doJSON(t, r, http.MethodPost, "/groups/"+g.ID+"/members", nil,
		map[string]string{"X-User-ID": "u2"})
	if w.Code != http.StatusConflict {
		t.Fatalf("second join status = %d", w.Code)
	}
}

func TestGroupPrayers_MembersOnly(t *testing.T) {
	r := registerGroupRoutes(t)

	g := decodeGroup(t, doJSON(t, r, http.MethodPost, "/groups", gin.H{"name": "Circle"}, nil))
	w := doJSON(t, r, http.MethodPost, "/prayers",
		gin.H{"content": "Please pray for us all", "group_id": g.ID}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("group prayer: %d body=%s", w.Code, w.Body.String())
	}

	// Non-member is rejected.
	w = doJSON(t, r, http.MethodGet, "/groups/"+g.ID+"/prayers", nil,
		map[string]string{"X-User-ID": "outsider"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("outsider status = %d", w.Code)
	}

	// The owner sees the prayer.
	w = doJSON(t, r, http.MethodGet, "/groups/"+g.ID+"/prayers", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("owner status = %d", w.Code)
	}
	var resp GroupPrayersResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Prayers) != 1 {
		t.Fatalf("expected 1 prayer, got %d", len(resp.Prayers))
	}
}
