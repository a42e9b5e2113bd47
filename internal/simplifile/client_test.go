package simplifile_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"erecord/internal/build"
	"erecord/internal/config"
	"erecord/internal/county"
	"erecord/internal/docpair"
	"erecord/internal/recording"
	"erecord/internal/rowfeed"
	"erecord/internal/services"
	"erecord/internal/simplifile"
)

func testPackage(t *testing.T) *recording.Package {
	t.Helper()
	dir := t.TempDir()
	deedPath := filepath.Join(dir, "deed.pdf")
	satPath := filepath.Join(dir, "sat.pdf")
	for _, path := range []string{deedPath, satPath} {
		if err := os.WriteFile(path, []byte("%PDF-1.4 test"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}

	profile, err := county.Builtin().Get("SCCP49")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	row := rowfeed.RowRecord{
		FileNo:           "24-0101",
		Account:          "100123",
		FirstName1:       "JOHN",
		LastName1:        "SMITH",
		DeedBook:         "1234",
		DeedPage:         "56",
		MortgageBook:     "789",
		MortgagePage:     "12",
		ExecutionDate:    "01/15/2024",
		Consideration:    "1500.00",
		GrantorGrantee:   "OCEAN CLUB LLC",
		LegalDescription: "UNIT 204 PHASE II",
		ParcelID:         "R123-45",
	}
	pkg, err := build.Build(row, docpair.DocumentPair{Deed: deedPath, Satisfaction: satPath}, profile)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return pkg
}

func testClient(t *testing.T, serverURL string, retryMax int) *simplifile.Client {
	t.Helper()
	cfg := config.Default()
	cfg.Simplifile.BaseURL = serverURL
	cfg.Simplifile.APIToken = "tok-test"
	cfg.Simplifile.SubmitterID = "SCCSAA"
	cfg.Submission.RetryMax = retryMax
	cfg.Submission.BackoffSeconds = 0 // no delay between attempts under test
	cfg.Submission.TimeoutSeconds = 5
	return simplifile.NewClient(&cfg, nil)
}

func TestCreatePackageSendsDraftPayload(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sf/rest/api/erecord/submitters/SCCSAA/packages/create" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("api_token") != "tok-test" {
			t.Errorf("missing api_token header")
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{"resultCode": "SUCCESS", "packageID": "SF-789"})
	}))
	defer server.Close()

	client := testClient(t, server.URL, 0)
	remoteID, err := client.CreatePackage(context.Background(), testPackage(t))
	if err != nil {
		t.Fatalf("CreatePackage: %v", err)
	}
	if remoteID != "SF-789" {
		t.Fatalf("remote id = %q", remoteID)
	}

	if captured["submitterPackageID"] != "24-0101-100123" {
		t.Fatalf("submitterPackageID = %v", captured["submitterPackageID"])
	}
	ops, _ := captured["operations"].(map[string]any)
	if ops["draftOnErrors"] != true || ops["submitImmediately"] != false {
		t.Fatalf("draft flags = %v", ops)
	}
	docs, _ := captured["documents"].([]any)
	if len(docs) != 2 {
		t.Fatalf("documents = %d, want 2", len(docs))
	}

	deed, _ := docs[0].(map[string]any)
	indexing, _ := deed["indexingData"].(map[string]any)
	grantors, _ := indexing["grantors"].([]any)
	first, _ := grantors[0].(map[string]any)
	if first["type"] != "Organization" || first["nameUnparsed"] != "KING CUNNINGHAM LLC TR" {
		t.Fatalf("first grantor = %v", first)
	}
	last, _ := grantors[len(grantors)-1].(map[string]any)
	if last["type"] != "Individual" || last["firstName"] != "JOHN" || last["lastName"] != "SMITH" {
		t.Fatalf("owner grantor = %v", last)
	}
	files, _ := deed["fileBytes"].([]any)
	if len(files) != 1 || files[0] == "" {
		t.Fatalf("fileBytes = %v", files)
	}
	legals, _ := indexing["legalDescriptions"].([]any)
	legal, _ := legals[0].(map[string]any)
	if legal["description"] != "UNIT 204 PHASE II R123-45" || legal["parcelId"] != "" {
		t.Fatalf("legal description = %v", legal)
	}
}

func TestCreatePackageRejectionIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(map[string]any{"resultCode": "ERROR", "message": "duplicate package"})
	}))
	defer server.Close()

	client := testClient(t, server.URL, 3)
	_, err := client.CreatePackage(context.Background(), testPackage(t))
	if err == nil {
		t.Fatal("expected rejection error")
	}
	if !errors.Is(err, services.ErrRejected) {
		t.Fatalf("error not a rejection: %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("calls = %d, rejections must not retry", got)
	}
}

func TestCreatePackageRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"resultCode": "SUCCESS", "packageID": "SF-1"})
	}))
	defer server.Close()

	client := testClient(t, server.URL, 3)
	remoteID, err := client.CreatePackage(context.Background(), testPackage(t))
	if err != nil {
		t.Fatalf("CreatePackage: %v", err)
	}
	if remoteID != "SF-1" {
		t.Fatalf("remote id = %q", remoteID)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("calls = %d, want 3", got)
	}
}

func TestCreatePackageExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testClient(t, server.URL, 2)
	_, err := client.CreatePackage(context.Background(), testPackage(t))
	if err == nil {
		t.Fatal("expected transport error")
	}
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("error not transport: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("calls = %d, want initial + 2 retries", got)
	}
}

func TestTestConnection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sf/rest/api/erecord/submitters/SCCSAA/recipients" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := testClient(t, server.URL, 0)
	if err := client.TestConnection(context.Background()); err != nil {
		t.Fatalf("TestConnection: %v", err)
	}
}

func TestTestConnectionBadCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := testClient(t, server.URL, 0)
	err := client.TestConnection(context.Background())
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("error = %v, want configuration error", err)
	}
}
