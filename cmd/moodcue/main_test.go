package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"moodcue/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	corpusPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	corpusPath := testsupport.WriteCorpusCSV(t, base, testsupport.ValenceSpread()...)

	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
corpus_path = %q
cache_dir = %q
log_dir = %q

[sessions]
db_path = %q
`,
		corpusPath,
		filepath.Join(base, "cache"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "sessions.db"),
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{baseDir: base, configPath: configPath, corpusPath: corpusPath}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("output missing %q:\n%s", needle, haystack)
	}
}

func TestCLIRecommend(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"recommend", "happy", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}

	var recs []recommendationView
	if err := json.Unmarshal([]byte(out), &recs); err != nil {
		t.Fatalf("parse recommend output: %v\n%s", err, out)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d recommendations, want 3", len(recs))
	}
	if recs[0].ID != "bright" {
		t.Errorf("top result = %q, want bright", recs[0].ID)
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].Similarity > recs[i-1].Similarity {
			t.Errorf("similarities not descending at rank %d", i)
		}
	}
}

func TestCLIRecommendUnknownMood(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"recommend", "excited"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for unknown mood")
	}
	requireContains(t, err.Error(), "unknown mood")
}

func TestCLIRecommendTopK(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"recommend", "Calm", "--top-k", "1", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	var recs []recommendationView
	if err := json.Unmarshal([]byte(out), &recs); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("got %d recommendations, want 1", len(recs))
	}
}

func TestCLISimilarByTrackID(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"similar", "bright", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("similar: %v", err)
	}
	var recs []recommendationView
	if err := json.Unmarshal([]byte(out), &recs); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d results, want 2", len(recs))
	}
	for _, rec := range recs {
		if rec.ID == "bright" {
			t.Error("similar lookup returned the query track")
		}
	}
}

func TestCLISimilarUnknownTrack(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"similar", "not-a-track"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for unknown track")
	}
	requireContains(t, err.Error(), "not in the corpus")
}

func TestCLIEstimate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"estimate", "--genre", "pop,dance", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	var recs []recommendationView
	if err := json.Unmarshal([]byte(out), &recs); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(recs) == 0 {
		t.Error("expected ranked results for estimated track")
	}
}

func TestCLISearch(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"search", "bright", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	requireContains(t, out, `"id": "bright"`)

	out, _, err = runCLI(t, []string{"search", "no-such-track"}, env.configPath)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	requireContains(t, out, "No tracks match")
}

func TestCLIMoods(t *testing.T) {
	out, _, err := runCLI(t, []string{"moods"}, "")
	if err != nil {
		t.Fatalf("moods: %v", err)
	}
	for _, mood := range []string{"Angry", "Calm", "Energized", "Happy", "Sad"} {
		requireContains(t, out, mood)
	}
}

func TestCLICorpusStats(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"corpus", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("corpus stats: %v", err)
	}
	requireContains(t, out, "Total tracks")
	requireContains(t, out, "3")
}

func TestCLICorpusRebuild(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"corpus", "rebuild"}, env.configPath)
	if err != nil {
		t.Fatalf("corpus rebuild: %v", err)
	}
	requireContains(t, out, "Rebuilt feature corpus: 3 rows")
}

func TestCLISessionsAddListAndPersonalizedRecommend(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t,
		[]string{"sessions", "add", "alice", "gloomy", "--mood", "happy", "--intensity", "90"},
		env.configPath)
	if err != nil {
		t.Fatalf("sessions add: %v", err)
	}
	requireContains(t, out, "Recorded Happy session")

	out, _, err = runCLI(t, []string{"sessions", "list", "alice"}, env.configPath)
	if err != nil {
		t.Fatalf("sessions list: %v", err)
	}
	requireContains(t, out, "Gloomy")
	requireContains(t, out, "Happy")

	out, _, err = runCLI(t,
		[]string{"recommend", "Happy", "--user", "alice", "--weight", "1", "--json"},
		env.configPath)
	if err != nil {
		t.Fatalf("personalized recommend: %v", err)
	}
	var recs []recommendationView
	if err := json.Unmarshal([]byte(out), &recs); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(recs) == 0 || recs[0].ID != "gloomy" {
		t.Errorf("weight 1 with gloomy sessions should rank gloomy first, got %v", recs)
	}
}

func TestCLIRecommendFromSeededSessionStore(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTopK(3))
	corpusDir := filepath.Dir(cfg.Paths.CorpusPath)
	testsupport.WriteCorpusCSV(t, corpusDir, testsupport.ValenceSpread()...)

	store := testsupport.MustOpenSessions(t, cfg)
	testsupport.RecordSession(t, store, "alice", "gloomy", "Happy", 95)

	configPath := filepath.Join(corpusDir, "config.toml")
	content := fmt.Sprintf(`[paths]
corpus_path = %q
cache_dir = %q
log_dir = %q

[recommend]
top_k = %d

[sessions]
db_path = %q
`,
		cfg.Paths.CorpusPath,
		cfg.Paths.CacheDir,
		cfg.Paths.LogDir,
		cfg.Recommend.TopK,
		cfg.Sessions.DBPath,
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, _, err := runCLI(t,
		[]string{"recommend", "Happy", "--user", "alice", "--weight", "1", "--json"},
		configPath)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	var recs []recommendationView
	if err := json.Unmarshal([]byte(out), &recs); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(recs) == 0 || recs[0].ID != "gloomy" {
		t.Errorf("seeded sessions should rank gloomy first, got %v", recs)
	}
}

func TestCLISessionsAddRejectsBadInput(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t,
		[]string{"sessions", "add", "alice", "bright", "--mood", "excited"},
		env.configPath)
	if err == nil {
		t.Fatal("expected error for unknown mood")
	}

	_, _, err = runCLI(t,
		[]string{"sessions", "add", "alice", "bright", "--mood", "happy", "--intensity", "150"},
		env.configPath)
	if err == nil {
		t.Fatal("expected error for out-of-range intensity")
	}
}

func TestCLIConfigInitAndShow(t *testing.T) {
	env := setupCLITestEnv(t)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, env.configPath)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "corpus_path")
	requireContains(t, out, env.corpusPath)
}
