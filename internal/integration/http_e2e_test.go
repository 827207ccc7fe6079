//go:build integration || !unit

package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	server "staylist/internal/adapters/http_server"
	redisad "staylist/internal/adapters/redis"
	"staylist/internal/app"
	"staylist/internal/partition"
	mysqlrepo "staylist/internal/storage/mysql"
)

// ---------- helpers ----------
func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/migrations)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sqlx.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .up.sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func post(t *testing.T, client *http.Client, url, userID, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return res
}

func decode(t *testing.T, res *http.Response, v any) {
	t.Helper()
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

// ---------- the test ----------
func TestHTTP_EndToEnd_ListingLifecycle(t *testing.T) {
	// Start isolated MySQL container
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=staylist",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "staylist")

	var db *sqlx.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sqlx.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)

	// Wire the real stack: router, stores, redis cache, chi server.
	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	router := partition.Default()
	stores := mysqlrepo.New(db, router)

	listing := app.NewListingService(
		stores.Accommodations, stores.Localized, stores.Images,
		stores.Locations, cache, router.Languages(),
	)
	queries := app.NewQueryService(stores.Accommodations, stores.Localized, cache, time.Minute)
	signup := app.NewSignupService(stores.Users)

	srv := server.New()
	srv.MountHandlers(&server.Handlers{
		L:         listing,
		Q:         queries,
		S:         signup,
		Users:     stores.Users,
		Locations: stores.Locations,
		Images:    stores.Images,
		Languages: router.Languages(),
		WriteRPS:  100,
	})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()
	client := ts.Client()

	// signup a property owner
	res := post(t, client, ts.URL+"/v1/signup", "", `{
	  "username":"owner1","email":"owner1@example.com",
	  "password":"secret123","confirm_password":"secret123"}`)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("signup status %d", res.StatusCode)
	}
	var signedUp struct {
		ID     int64 `json:"id"`
		Active bool  `json:"active"`
	}
	decode(t, res, &signedUp)
	if signedUp.Active {
		t.Fatalf("new account must start inactive")
	}
	owner := fmt.Sprintf("%d", signedUp.ID)

	// seed a location for the listing FK
	res = post(t, client, ts.URL+"/v1/locations", owner, `{
	  "id":"US","title":"United States","location_type":"country",
	  "country_code":"US","lat":39.5,"lon":-98.35}`)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create location status %d", res.StatusCode)
	}
	res.Body.Close()

	// create a listing; feed 1500 routes to the middle partition
	res = post(t, client, ts.URL+"/v1/accommodations", owner, `{
	  "id":"acc-e2e","feed":1500,"title":"E2E House","country_code":"US",
	  "bedroom_count":3,"review_score":4.2,"usd_rate":210,
	  "lat":40.7,"lon":-74.0,"amenities":["wifi","parking"],
	  "location_id":"US","published":true}`)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create accommodation status %d", res.StatusCode)
	}
	res.Body.Close()

	// author a French translation
	res = post(t, client, ts.URL+"/v1/accommodations/1500/acc-e2e/localizations", owner, `{
	  "language":"fr","description":"Maison E2E","policy":{"pet_policy":"pas d'animaux"}}`)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create localization status %d", res.StatusCode)
	}
	res.Body.Close()

	// attach an image; the stored name is generated server-side
	res = post(t, client, ts.URL+"/v1/accommodations/1500/acc-e2e/images", owner,
		`{"file_name":"front door.jpg"}`)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("attach image status %d", res.StatusCode)
	}
	var img struct {
		FileName string `json:"file_name"`
	}
	decode(t, res, &img)
	if img.FileName == "front door.jpg" || !strings.HasSuffix(img.FileName, ".jpg") {
		t.Fatalf("expected generated .jpg name, got %q", img.FileName)
	}
	res, err = client.Get(ts.URL + "/v1/accommodations/1500/acc-e2e/images")
	if err != nil {
		t.Fatalf("GET images: %v", err)
	}
	var imgs struct {
		Items []struct {
			FileName string `json:"file_name"`
		} `json:"items"`
	}
	decode(t, res, &imgs)
	if len(imgs.Items) != 1 || imgs.Items[0].FileName != img.FileName {
		t.Fatalf("unexpected image list: %+v", imgs)
	}

	// read the listing back localized
	res, err = client.Get(ts.URL + "/v1/accommodations/1500/acc-e2e?lang=fr")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("get status %d", res.StatusCode)
	}
	if cl := res.Header.Get("Content-Language"); cl != "fr" {
		t.Fatalf("Content-Language %q", cl)
	}
	etag := res.Header.Get("ETag")
	if etag == "" {
		t.Fatalf("missing ETag")
	}
	var view struct {
		ID          string  `json:"id"`
		Feed        int     `json:"feed"`
		Language    string  `json:"language"`
		Description *string `json:"description"`
	}
	decode(t, res, &view)
	if view.ID != "acc-e2e" || view.Feed != 1500 || view.Language != "fr" {
		t.Fatalf("unexpected view: %+v", view)
	}
	if view.Description == nil || *view.Description != "Maison E2E" {
		t.Fatalf("unexpected description: %+v", view.Description)
	}

	// conditional re-read short-circuits on the ETag
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/accommodations/1500/acc-e2e?lang=fr", nil)
	req.Header.Set("If-None-Match", etag)
	res, err = client.Do(req)
	if err != nil {
		t.Fatalf("conditional GET: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNotModified {
		t.Fatalf("conditional get status %d", res.StatusCode)
	}

	// an unsupported language is rejected before storage
	res, err = client.Get(ts.URL + "/v1/accommodations/1500/acc-e2e?lang=zz")
	if err != nil {
		t.Fatalf("GET zz: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("unsupported language status %d", res.StatusCode)
	}

	// delete cascades; the listing and its translations are gone
	req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/v1/accommodations/1500/acc-e2e", nil)
	req.Header.Set("X-User-ID", owner)
	res, err = client.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status %d", res.StatusCode)
	}
	res, err = client.Get(ts.URL + "/v1/accommodations/1500/acc-e2e?lang=fr")
	if err != nil {
		t.Fatalf("GET after delete: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status after delete %d", res.StatusCode)
	}
}
