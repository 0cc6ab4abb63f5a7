package retrieval

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const sampleResponse = `{
  "hits": [
    {
      "recipe": {
        "label": "Greek Yogurt Parfait",
        "source": "Test Kitchen",
        "url": "https://example.com/parfait",
        "calories": 700,
        "yield": 2,
        "totalTime": 10,
        "healthLabels": ["Vegetarian"],
        "dietLabels": ["High-Protein"],
        "ingredients": [
          {"food": "greek yogurt"},
          {"food": "granola"},
          {"food": "honey"}
        ],
        "totalNutrients": {
          "PROCNT": {"quantity": 40},
          "CHOCDF": {"quantity": 60},
          "FAT": {"quantity": 20}
        }
      }
    }
  ]
}`

func TestCandidates(t *testing.T) {
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		if r.Header.Get("Authorization") == "" {
			t.Error("Expected Authorization header to be set")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	client, err := NewClient("app-id", "app-key", "")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	client.WithBaseURL(server.URL)

	candidates, err := client.Candidates(context.Background(), CandidateQuery{
		MealType:    "breakfast",
		Dietary:     []string{"vegetarian"},
		Preferences: []string{"high-protein"},
		PrepTimeMax: 20,
		Count:       5,
	})
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(candidates))
	}

	c := candidates[0]
	if c.Title != "Greek Yogurt Parfait" {
		t.Errorf("Expected title 'Greek Yogurt Parfait', got '%s'", c.Title)
	}
	// Per-serving values: yield is 2.
	if c.Nutrition.Calories != 350 {
		t.Errorf("Expected 350 calories per serving, got %d", c.Nutrition.Calories)
	}
	if c.Nutrition.Protein != 20.0 {
		t.Errorf("Expected 20.0g protein per serving, got %v", c.Nutrition.Protein)
	}
	if c.PrepTimeMinutes != 10 {
		t.Errorf("Expected 10 minute prep time, got %d", c.PrepTimeMinutes)
	}

	if got := gotQuery["mealType"]; len(got) != 1 || got[0] != "breakfast" {
		t.Errorf("Expected mealType=breakfast, got %v", got)
	}
	if got := gotQuery["health"]; len(got) != 1 || got[0] != "vegetarian" {
		t.Errorf("Expected health=vegetarian, got %v", got)
	}
	if got := gotQuery["diet"]; len(got) != 1 || got[0] != "high-protein" {
		t.Errorf("Expected diet=high-protein, got %v", got)
	}
	if got := gotQuery["time"]; len(got) != 1 || got[0] != "1-20" {
		t.Errorf("Expected time=1-20, got %v", got)
	}
}

func TestCandidatesEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"hits": []}`))
	}))
	defer server.Close()

	client, _ := NewClient("app-id", "app-key", "user-id")
	client.WithBaseURL(server.URL)

	candidates, err := client.Candidates(context.Background(), CandidateQuery{MealType: "dinner", Count: 3})
	if err != nil {
		t.Fatalf("Expected empty result to be a non-error outcome, got %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("Expected 0 candidates, got %d", len(candidates))
	}
}

func TestCandidatesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, _ := NewClient("app-id", "app-key", "user-id")
	client.WithBaseURL(server.URL)

	_, err := client.Candidates(context.Background(), CandidateQuery{MealType: "lunch", Count: 3})
	if err == nil {
		t.Fatal("Expected an error for a non-200 response, got nil")
	}
}

func TestCandidatesPagination(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	client, _ := NewClient("app-id", "app-key", "user-id")
	client.WithBaseURL(server.URL)

	candidates, err := client.Candidates(context.Background(), CandidateQuery{MealType: "dinner", Count: 15})
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	if requests != 2 {
		t.Errorf("Expected 2 requests for a count of 15, got %d", requests)
	}
	// Both pages return the same recipe; duplicates are dropped by title.
	if len(candidates) != 1 {
		t.Errorf("Expected duplicate titles to be merged, got %d candidates", len(candidates))
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	if _, err := NewClient("", "", ""); err == nil {
		t.Fatal("Expected an error for missing credentials, got nil")
	}
}
