//go:build integration

package integration

import (
	"bufio"
	"net/http"
	"strings"
	"testing"
)

func TestHealthEndpoints(t *testing.T) {
	for _, path := range []string{"/livez", "/readyz"} {
		resp := doRequest(t, http.MethodGet, path, nil, "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected status 200, got %d", path, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestSignIn_WrongPassword(t *testing.T) {
	resp := doRequest(t, http.MethodPost, "/api/auth/signin", map[string]string{
		"email":    adminEmail,
		"password": "not-the-password",
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.StatusCode)
	}
}

func TestSeededCatalog(t *testing.T) {
	resp := doGet(t, "/api/products")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list products: expected status 200, got %d", resp.StatusCode)
	}
	products := decodeJSON[[]map[string]any](t, resp)
	resp.Body.Close()

	if len(products) == 0 {
		t.Fatal("expected seeded products, got none")
	}

	resp = doGet(t, "/api/services")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list services: expected status 200, got %d", resp.StatusCode)
	}
	services := decodeJSON[[]map[string]any](t, resp)
	resp.Body.Close()

	if len(services) == 0 {
		t.Fatal("expected seeded services, got none")
	}
}

func TestBackupExport(t *testing.T) {
	resp := doGet(t, "/api/backup/clients")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type = %q, want text/csv", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "clientes_ideal_collor") {
		t.Fatalf("content disposition = %q, want legacy table name", cd)
	}

	scanner := bufio.NewScanner(resp.Body)
	if !scanner.Scan() {
		t.Fatal("empty export body")
	}
	header := scanner.Text()
	if !strings.Contains(header, `"name"`) {
		t.Fatalf("csv header = %q, want quoted name column", header)
	}
}

func TestBackupExport_UnknownTable(t *testing.T) {
	resp := doGet(t, "/api/backup/invoices")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.StatusCode)
	}
}

func TestStatusReport(t *testing.T) {
	resp := doGet(t, "/api/reports/status")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	counts := decodeJSON[[]map[string]any](t, resp)
	resp.Body.Close()

	// TestOrderLifecycle runs first alphabetically only by luck; just check
	// the shape rather than the contents.
	for _, c := range counts {
		if _, ok := c["status"]; !ok {
			t.Fatalf("row missing status: %v", c)
		}
	}
}
