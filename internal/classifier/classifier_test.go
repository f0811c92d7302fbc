package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/newslens/internal/model"
)

func TestNormalizeLabel(t *testing.T) {
	tests := map[string]model.Label{
		"Not A Fake News": model.LabelReal,
		" real ":          model.LabelReal,
		"TRUE":            model.LabelReal,
		"1":               model.LabelReal,
		"Fake News":       model.LabelFake,
		"fake":            model.LabelFake,
		"false":           model.LabelFake,
		"0":               model.LabelFake,
	}
	for raw, want := range tests {
		got, err := NormalizeLabel(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := NormalizeLabel("maybe")
	assert.Error(t, err)
}

func TestLinear_Predict(t *testing.T) {
	l, err := LoadLinear("", "testdata/lr.json")
	require.NoError(t, err)
	assert.Equal(t, "logistic", l.Name())

	label, err := l.Predict(context.Background(), "SHOCKING miracle cure they keep secret, share now")
	require.NoError(t, err)
	assert.Equal(t, model.LabelFake, label)

	label, err = l.Predict(context.Background(), "According to officials, the ministry reported steady growth.")
	require.NoError(t, err)
	assert.Equal(t, model.LabelReal, label)

	// Only the bias applies to unseen vocabulary.
	assert.InDelta(t, -0.1, l.Score("unrelated words only"), 1e-9)
}

func TestLinear_BinaryCounts(t *testing.T) {
	a := LinearArtifact{
		Weights:       map[string]float64{"hoax": 1},
		PositiveLabel: "fake",
		NegativeLabel: "real",
		Binary:        true,
	}
	l, err := NewLinear("bin", a)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, l.Score("hoax hoax hoax"), 1e-9)

	a.Binary = false
	l, err = NewLinear("tf", a)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, l.Score("hoax hoax hoax"), 1e-9)
}

func TestNewLinear_Invalid(t *testing.T) {
	_, err := NewLinear("x", LinearArtifact{PositiveLabel: "fake", NegativeLabel: "real"})
	assert.ErrorContains(t, err, "no weights")

	_, err = NewLinear("x", LinearArtifact{Weights: map[string]float64{"a": 1}, PositiveLabel: "fake", NegativeLabel: "fake"})
	assert.Error(t, err)

	_, err = NewLinear("x", LinearArtifact{Weights: map[string]float64{"a": 1}, PositiveLabel: "fake", NegativeLabel: "real", TokenPattern: "("})
	assert.ErrorContains(t, err, "token pattern")
}

func TestRemote_Predict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req remoteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Text == "boom" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(remoteResponse{Label: "Not A Fake News"})
	}))
	defer server.Close()

	r := NewRemote("gb", server.URL, 0, nil)
	assert.Equal(t, "gb", r.Name())

	label, err := r.Predict(context.Background(), "article")
	require.NoError(t, err)
	assert.Equal(t, model.LabelReal, label)

	_, err = r.Predict(context.Background(), "boom")
	assert.ErrorContains(t, err, "503")
}

func TestLoad(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"label": "fake"}`))
	}))
	defer server.Close()

	reg, err := Load([]model.ClassifierConfig{
		{Name: "lr", Kind: "linear", Path: "testdata/lr.json"},
		{Name: "rf", Kind: "remote", URL: server.URL, Timeout: 2},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, []string{"lr", "rf"}, reg.Names())

	label, err := reg.All()[1].Predict(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, model.LabelFake, label)
}

func TestLoad_Errors(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))

	cases := [][]model.ClassifierConfig{
		{{Name: "a", Kind: "linear"}},
		{{Name: "a", Kind: "remote"}},
		{{Name: "a", Kind: "svm", Path: "x"}},
		{{Name: "a", Kind: "linear", Path: bad}},
		{{Name: "a", Kind: "linear", Path: "testdata/missing.json"}},
		{{Name: "a", Kind: "linear", Path: "testdata/lr.json"}, {Name: "a", Kind: "linear", Path: "testdata/lr.json"}},
	}
	for i, cfgs := range cases {
		_, err := Load(cfgs, nil)
		assert.Error(t, err, "case %d", i)
	}
}

func TestRegistry_Nil(t *testing.T) {
	var reg *Registry
	assert.Zero(t, reg.Len())
	assert.Empty(t, reg.All())
	assert.Empty(t, reg.Names())
}
