package retrieval

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	edamamBaseURL = "https://api.edamam.com/api/recipes/v2"

	// The API returns at most this many hits per request; larger candidate
	// counts are served by issuing extra requests with varied query terms.
	maxResultsPerRequest = 10
)

// Nutrition holds per-serving macro values for a candidate.
type Nutrition struct {
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Candidate is a real recipe fetched from the recipe search API,
// used as grounding data for generation.
type Candidate struct {
	Title           string    `json:"title"`
	Source          string    `json:"source"`
	URL             string    `json:"url"`
	Ingredients     []string  `json:"ingredients"`
	Nutrition       Nutrition `json:"nutrition"`
	PrepTimeMinutes int       `json:"prep_time_minutes"`
	Servings        float64   `json:"servings"`
	HealthLabels    []string  `json:"health_labels"`
	DietLabels      []string  `json:"diet_labels"`
}

// CandidateQuery describes a candidate search.
type CandidateQuery struct {
	MealType    string
	Dietary     []string
	Preferences []string
	PrepTimeMax int // minutes; 0 means no limit
	Count       int
}

// Retriever fetches real recipe candidates. An empty result is a valid,
// non-error outcome.
type Retriever interface {
	Candidates(ctx context.Context, q CandidateQuery) ([]Candidate, error)
}

// Client fetches recipe candidates from the Edamam Recipe Search API.
type Client struct {
	appID      string
	appKey     string
	userID     string
	baseURL    string
	basicAuth  string
	httpClient *http.Client
}

// NewClient creates a new Edamam API client.
func NewClient(appID, appKey, userID string) (*Client, error) {
	if appID == "" || appKey == "" {
		return nil, fmt.Errorf("edamam credentials (app id, app key) are required")
	}
	if userID == "" {
		userID = appID
	}
	credentials := fmt.Sprintf("%s:%s", appID, appKey)
	return &Client{
		appID:     appID,
		appKey:    appKey,
		userID:    userID,
		baseURL:   edamamBaseURL,
		basicAuth: base64.StdEncoding.EncodeToString([]byte(credentials)),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// WithBaseURL overrides the API endpoint. Used in tests.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

// Candidates fetches up to q.Count recipe candidates. Counts above the
// per-request cap fan out into additional requests whose query strings carry
// extra descriptor terms, and the merged results are deduplicated by title.
func (c *Client) Candidates(ctx context.Context, q CandidateQuery) ([]Candidate, error) {
	count := q.Count
	if count <= 0 {
		count = maxResultsPerRequest
	}

	var (
		merged []Candidate
		seen   = map[string]struct{}{}
	)
	pages := (count + maxResultsPerRequest - 1) / maxResultsPerRequest
	if pages > 2 {
		pages = 2
	}
	for page := 0; page < pages; page++ {
		want := count - len(merged)
		if want <= 0 {
			break
		}
		if want > maxResultsPerRequest {
			want = maxResultsPerRequest
		}
		batch, err := c.search(ctx, q, want, page)
		if err != nil {
			if page == 0 {
				return nil, err
			}
			// First page succeeded; serve what we have.
			break
		}
		for _, cand := range batch {
			if _, dup := seen[cand.Title]; dup {
				continue
			}
			seen[cand.Title] = struct{}{}
			merged = append(merged, cand)
		}
	}
	return merged, nil
}

func (c *Client) search(ctx context.Context, q CandidateQuery, count, page int) ([]Candidate, error) {
	params := url.Values{}
	params.Set("type", "public")
	params.Set("q", c.queryTerms(q, page))
	params.Set("app_id", c.appID)
	params.Set("app_key", c.appKey)
	params.Set("to", fmt.Sprintf("%d", count))

	if mt, ok := mealTypeParam[strings.ToLower(q.MealType)]; ok {
		params.Set("mealType", mt)
	}
	for _, h := range healthLabels(q.Dietary) {
		params.Add("health", h)
	}
	if diet := dietLabel(q.Preferences); diet != "" {
		params.Set("diet", diet)
	}
	if q.PrepTimeMax > 0 {
		params.Set("time", fmt.Sprintf("1-%d", q.PrepTimeMax))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("Accept-Language", "en")
	req.Header.Set("Authorization", "Basic "+c.basicAuth)
	req.Header.Set("Edamam-Account-User", c.userID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("edamam api error: status=%d body=%s", resp.StatusCode, string(bodyBytes))
	}

	var payload edamamResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	candidates := make([]Candidate, 0, len(payload.Hits))
	for _, hit := range payload.Hits {
		candidates = append(candidates, hit.Recipe.toCandidate())
	}
	return candidates, nil
}

// queryTerms builds the free-text query. Later pages mix in neutral
// descriptor terms so repeated requests surface different recipes.
func (c *Client) queryTerms(q CandidateQuery, page int) string {
	parts := []string{q.MealType}
	parts = append(parts, q.Dietary...)
	parts = append(parts, q.Preferences...)
	if page > 0 {
		idx := (page - 1) % len(ambienceTerms)
		parts = append(parts, ambienceTerms[idx], ambienceTerms[(idx+3)%len(ambienceTerms)])
	}
	return strings.Join(parts, " ")
}

var ambienceTerms = []string{
	"seasonal", "fresh", "vibrant", "comfort", "home-style", "rustic",
	"colorful", "balanced", "weekday-friendly", "hearty",
}

var mealTypeParam = map[string]string{
	"breakfast": "breakfast",
	"lunch":     "lunch/dinner",
	"dinner":    "lunch/dinner",
	"snack":     "snack",
}

// healthLabelParam maps dietary restriction names to Edamam health labels.
// "pecatarian" is not a typo: that is the label the API uses.
var healthLabelParam = map[string]string{
	"vegetarian":  "vegetarian",
	"vegan":       "vegan",
	"pescatarian": "pecatarian",
	"paleo":       "paleo",
	"keto":        "keto-friendly",
	"gluten-free": "gluten-free",
	"dairy-free":  "dairy-free",
	"nut-free":    "tree-nut-free",
	"peanut-free": "peanut-free",
	"soy-free":    "soy-free",
	"egg-free":    "egg-free",
}

// dietLabelParam maps preference names to Edamam diet labels. At most one
// diet label is sent per request.
var dietLabelParam = map[string]string{
	"high-protein": "high-protein",
	"low-carb":     "low-carb",
	"low-fat":      "low-fat",
	"balanced":     "balanced",
}

func healthLabels(dietary []string) []string {
	var labels []string
	seen := map[string]struct{}{}
	for _, item := range dietary {
		if label, ok := healthLabelParam[strings.ToLower(item)]; ok {
			if _, dup := seen[label]; dup {
				continue
			}
			seen[label] = struct{}{}
			labels = append(labels, label)
		}
	}
	return labels
}

func dietLabel(preferences []string) string {
	for _, item := range preferences {
		if label, ok := dietLabelParam[strings.ToLower(item)]; ok {
			return label
		}
	}
	return ""
}

type edamamResponse struct {
	Hits []struct {
		Recipe edamamRecipe `json:"recipe"`
	} `json:"hits"`
}

type edamamRecipe struct {
	Label        string   `json:"label"`
	Source       string   `json:"source"`
	URL          string   `json:"url"`
	Calories     float64  `json:"calories"`
	Yield        float64  `json:"yield"`
	TotalTime    float64  `json:"totalTime"`
	HealthLabels []string `json:"healthLabels"`
	DietLabels   []string `json:"dietLabels"`
	Ingredients  []struct {
		Food string `json:"food"`
	} `json:"ingredients"`
	TotalNutrients map[string]struct {
		Quantity float64 `json:"quantity"`
	} `json:"totalNutrients"`
}

func (r edamamRecipe) toCandidate() Candidate {
	servings := r.Yield
	if servings <= 0 {
		servings = 1
	}

	ingredients := make([]string, 0, 7)
	for _, ing := range r.Ingredients {
		if ing.Food == "" {
			continue
		}
		ingredients = append(ingredients, ing.Food)
		if len(ingredients) == 7 {
			break
		}
	}

	title := r.Label
	if title == "" {
		title = "Unknown Recipe"
	}
	source := r.Source
	if source == "" {
		source = "Unknown"
	}

	return Candidate{
		Title:       title,
		Source:      source,
		URL:         r.URL,
		Ingredients: ingredients,
		Nutrition: Nutrition{
			Calories: int(r.Calories/servings + 0.5),
			Protein:  round1(r.TotalNutrients["PROCNT"].Quantity / servings),
			Carbs:    round1(r.TotalNutrients["CHOCDF"].Quantity / servings),
			Fat:      round1(r.TotalNutrients["FAT"].Quantity / servings),
		},
		PrepTimeMinutes: int(r.TotalTime),
		Servings:        servings,
		HealthLabels:    r.HealthLabels,
		DietLabels:      r.DietLabels,
	}
}

func round1(v float64) float64 {
	if v < 0 {
		return 0
	}
	return float64(int(v*10+0.5)) / 10
}
