package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

type client struct {
	BaseURL   string
	APIKey    string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte) (int, []byte, error) {
	u := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, u, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("X-Admin-API-Key", c.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func resolveDSN(flagDSN string) (string, error) {
	if dsn := strings.TrimSpace(flagDSN); dsn != "" {
		return dsn, nil
	}
	if dsn := strings.TrimSpace(os.Getenv("STORAGE_DSN")); dsn != "" {
		return dsn, nil
	}
	return "", fmt.Errorf("no hay DSN (flag --dsn o env STORAGE_DSN)")
}

func main() {
	// .env opcional, igual que el servidor
	_ = godotenv.Load()

	var (
		baseURL = envOr("CONSENTD_ADMIN_URL", "http://localhost:8080")
		apiKey  = envOr("CONSENTD_ADMIN_KEY", "")
		out     = envOr("CONSENTD_OUT", "text")
	)

	root := &cobra.Command{
		Use:           "consentctl",
		Short:         "CLI operacional de consentd (admin API, migraciones y seed)",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&baseURL, "admin-api-url", baseURL, "URL base del Admin API (env CONSENTD_ADMIN_URL)")
	root.PersistentFlags().StringVar(&apiKey, "admin-api-key", apiKey, "API key del Admin API (env CONSENTD_ADMIN_KEY)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")

	cl := &client{HTTP: &http.Client{Timeout: 30 * time.Second}}
	syncClient := func() {
		cl.BaseURL = baseURL
		cl.APIKey = apiKey
		cl.OutFormat = out
	}

	// ping: /healthz no requiere API key
	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Ping al servicio (GET /healthz)",
		RunE: func(cmd *cobra.Command, args []string) error {
			syncClient()
			status, body, err := cl.do("GET", "/healthz", nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("ping falló: status=%d body=%s", status, string(body))
			}
			if cl.OutFormat == "text" {
				fmt.Println("ok")
				return nil
			}
			cl.print(status, body)
			return nil
		},
	}

	// grupo grants (requiere API key)
	grantsCmd := &cobra.Command{
		Use:   "grants",
		Short: "Consultar y revocar grants de organización (vía /admin)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if apiKey == "" {
				return fmt.Errorf("falta API key (flag --admin-api-key o env CONSENTD_ADMIN_KEY)")
			}
			return nil
		},
	}

	var listUserID, listAppID string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Listar grants por usuario o por aplicación",
		RunE: func(cmd *cobra.Command, args []string) error {
			syncClient()
			var path string
			switch {
			case listUserID != "" && listAppID != "":
				return fmt.Errorf("usar --user o --application, no ambos")
			case listUserID != "":
				path = "/admin/users/" + url.PathEscape(listUserID) + "/grants"
			case listAppID != "":
				path = "/admin/applications/" + url.PathEscape(listAppID) + "/grants"
			default:
				return fmt.Errorf("falta --user o --application")
			}
			status, body, err := cl.do("GET", path, nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("list falló: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	listCmd.Flags().StringVar(&listUserID, "user", "", "ID de usuario")
	listCmd.Flags().StringVar(&listAppID, "application", "", "ID de aplicación")

	revokeCmd := &cobra.Command{
		Use:   "revoke <grant-id>",
		Short: "Revocar un grant por ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			syncClient()
			status, body, err := cl.do("DELETE", "/admin/grants/"+url.PathEscape(args[0]), nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("revoke falló: status=%d body=%s", status, string(body))
			}
			if cl.OutFormat == "text" {
				fmt.Println("revoked")
				return nil
			}
			cl.print(status, body)
			return nil
		},
	}

	grantsCmd.AddCommand(listCmd, revokeCmd)

	// migrate: aplica *_up.sql / *_down.sql en orden
	var migrateDSN, migrateDir string
	migrateCmd := &cobra.Command{
		Use:   "migrate [up|down] [steps]",
		Short: "Aplicar migraciones SQL de migrations/postgres",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			steps := 0
			if len(args) >= 1 && args[0] != "" {
				action = strings.ToLower(args[0])
			}
			if len(args) >= 2 {
				n, err := strconv.Atoi(args[1])
				if err != nil || n <= 0 {
					return fmt.Errorf("steps inválido: %q", args[1])
				}
				steps = n
			}
			dsn, err := resolveDSN(migrateDSN)
			if err != nil {
				return err
			}
			return runMigrations(cmd.Context(), dsn, migrateDir, action, steps)
		},
	}
	migrateCmd.Flags().StringVar(&migrateDSN, "dsn", "", "DSN de PostgreSQL (env STORAGE_DSN)")
	migrateCmd.Flags().StringVar(&migrateDir, "dir", "migrations/postgres", "Directorio de migraciones")

	// seed: datos de desarrollo, idempotente
	var seedDSN string
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Cargar datos de desarrollo (idempotente)",
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, err := resolveDSN(seedDSN)
			if err != nil {
				return err
			}
			return runSeed(cmd.Context(), dsn)
		},
	}
	seedCmd.Flags().StringVar(&seedDSN, "dsn", "", "DSN de PostgreSQL (env STORAGE_DSN)")

	root.AddCommand(pingCmd, grantsCmd, migrateCmd, seedCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runMigrations(ctx context.Context, dsn, dir, action string, steps int) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("pgxpool: %w", err)
	}
	defer pool.Close()

	var suffix string
	switch action {
	case "up":
		suffix = "_up.sql"
	case "down":
		suffix = "_down.sql"
	default:
		return fmt.Errorf("acción desconocida: %q (up|down)", action)
	}

	files, err := listSQL(dir, suffix)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Printf("sin migraciones %s en %s\n", suffix, dir)
		return nil
	}
	sort.Strings(files)
	if action == "down" {
		// los down corren de la más nueva a la más vieja
		for i, j := 0, len(files)-1; i < j; i, j = i+1, j-1 {
			files[i], files[j] = files[j], files[i]
		}
	}
	if steps > 0 && steps < len(files) {
		files = files[:steps]
	}

	for _, f := range files {
		sql, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("leer %s: %w", f, err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("exec %s: %w", f, err)
		}
		fmt.Printf("aplicada %s\n", filepath.Base(f))
	}
	return nil
}

func listSQL(dir, suffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("leer dir %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	return out, nil
}

// runSeed carga un dataset de desarrollo completo: un recurso de API con tres
// scopes, dos scopes de organización, dos organizaciones con roles, dos
// usuarios y una aplicación con sign-in experience. Todo upsert, se puede
// correr las veces que haga falta.
func runSeed(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("pgxpool: %w", err)
	}
	defer pool.Close()

	indicator := envOr("SEED_RESOURCE_INDICATOR", "https://api.acme.test")
	resourceName := envOr("SEED_RESOURCE_NAME", "Acme API")
	appID := envOr("SEED_APPLICATION_ID", "web-frontend")
	appName := envOr("SEED_APPLICATION_NAME", "Web Frontend")
	userEmail := envOr("SEED_USER_EMAIL", "alice@acme.test")
	userPass := envOr("SEED_USER_PASSWORD", "CorrectHorseBatteryStaple1!")
	memberEmail := envOr("SEED_MEMBER_EMAIL", "bob@acme.test")
	memberPass := envOr("SEED_MEMBER_PASSWORD", "Password.1234")

	// helper: upsert por clave natural devolviendo id estable
	upsertID := func(q string, args ...any) (string, error) {
		var id string
		if err := pool.QueryRow(ctx, q, args...).Scan(&id); err != nil {
			return "", err
		}
		return id, nil
	}

	// 1) Recurso + scopes
	resourceID, err := upsertID(`
		INSERT INTO resources (id, indicator, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (indicator) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, uuid.NewString(), indicator, resourceName)
	if err != nil {
		return fmt.Errorf("upsert resource: %w", err)
	}

	scopeIDs := map[string]string{}
	for name, desc := range map[string]string{
		"read":  "Read access",
		"write": "Write access",
		"admin": "Administrative access",
	} {
		id, err := upsertID(`
			INSERT INTO scopes (id, resource_id, name, description)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (resource_id, name) DO UPDATE SET description = EXCLUDED.description
			RETURNING id
		`, uuid.NewString(), resourceID, name, desc)
		if err != nil {
			return fmt.Errorf("upsert scope %s: %w", name, err)
		}
		scopeIDs[name] = id
	}

	// 2) Scopes de organización
	orgScopeIDs := map[string]string{}
	for name, desc := range map[string]string{
		"members:read":   "List organization members",
		"members:manage": "Manage organization members",
	} {
		id, err := upsertID(`
			INSERT INTO organization_scopes (id, name, description)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description
			RETURNING id
		`, uuid.NewString(), name, desc)
		if err != nil {
			return fmt.Errorf("upsert organization scope %s: %w", name, err)
		}
		orgScopeIDs[name] = id
	}

	// 3) Organizaciones: los ids son claves naturales para poder upsertear
	orgIDs := map[string]string{}
	for id, name := range map[string]string{
		"org-acme":    "Acme Inc",
		"org-initech": "Initech",
	} {
		if _, err := pool.Exec(ctx, `
			INSERT INTO organizations (id, name)
			VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
		`, id, name); err != nil {
			return fmt.Errorf("upsert organization %s: %w", id, err)
		}
		orgIDs[id] = name
	}

	// 4) Usuarios
	insUser := func(email, name, pwd string) (string, error) {
		hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
		if err != nil {
			return "", err
		}
		return upsertID(`
			INSERT INTO users (id, email, name, password_hash)
			VALUES ($1, LOWER($2), $3, $4)
			ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name,
			                                  password_hash = EXCLUDED.password_hash
			RETURNING id
		`, uuid.NewString(), email, name, string(hash))
	}

	aliceID, err := insUser(userEmail, "Alice Doe", userPass)
	if err != nil {
		return fmt.Errorf("upsert user %s: %w", userEmail, err)
	}
	bobID, err := insUser(memberEmail, "Bob Roe", memberPass)
	if err != nil {
		return fmt.Errorf("upsert user %s: %w", memberEmail, err)
	}

	// 5) Aplicación + sign-in experience
	if _, err := pool.Exec(ctx, `
		INSERT INTO applications (id, name, description)
		VALUES ($1, $2, 'Seeded development application')
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
	`, appID, appName); err != nil {
		return fmt.Errorf("upsert application: %w", err)
	}
	if _, err := pool.Exec(ctx, `
		INSERT INTO sign_in_experiences (application_id, display_name, logo_url, terms_url, privacy_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (application_id) DO UPDATE SET display_name = EXCLUDED.display_name,
		                                           logo_url = EXCLUDED.logo_url,
		                                           terms_url = EXCLUDED.terms_url,
		                                           privacy_url = EXCLUDED.privacy_url
	`, appID, appName+" (Dev)", "https://cdn.acme.test/logo.png",
		"https://acme.test/terms", "https://acme.test/privacy"); err != nil {
		return fmt.Errorf("upsert sign-in experience: %w", err)
	}

	// 6) Membresías: alice en ambas orgs, bob solo en acme
	addMembership := func(orgID, userID string) error {
		_, err := pool.Exec(ctx, `
			INSERT INTO organization_memberships (organization_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, orgID, userID)
		return err
	}
	for _, m := range []struct{ org, user string }{
		{"org-acme", aliceID},
		{"org-initech", aliceID},
		{"org-acme", bobID},
	} {
		if err := addMembership(m.org, m.user); err != nil {
			return fmt.Errorf("membership %s/%s: %w", m.org, m.user, err)
		}
	}

	// 7) Rol "member" en org-acme con write + members:read; alice lo tiene
	roleID, err := upsertID(`
		INSERT INTO organization_roles (id, organization_id, name)
		VALUES ($1, $2, 'member')
		ON CONFLICT (organization_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, uuid.NewString(), "org-acme")
	if err != nil {
		return fmt.Errorf("upsert role: %w", err)
	}
	if _, err := pool.Exec(ctx, `
		INSERT INTO organization_role_resource_scopes (role_id, scope_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING
	`, roleID, scopeIDs["write"]); err != nil {
		return fmt.Errorf("role resource scope: %w", err)
	}
	if _, err := pool.Exec(ctx, `
		INSERT INTO organization_role_scopes (role_id, organization_scope_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING
	`, roleID, orgScopeIDs["members:read"]); err != nil {
		return fmt.Errorf("role organization scope: %w", err)
	}
	if _, err := pool.Exec(ctx, `
		INSERT INTO organization_user_roles (organization_id, user_id, role_id)
		VALUES ($1, $2, $3) ON CONFLICT DO NOTHING
	`, "org-acme", aliceID, roleID); err != nil {
		return fmt.Errorf("user role: %w", err)
	}

	// 8) Permiso directo de alice: read sobre el recurso
	if _, err := pool.Exec(ctx, `
		INSERT INTO user_resource_scopes (user_id, scope_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING
	`, aliceID, scopeIDs["read"]); err != nil {
		return fmt.Errorf("user resource scope: %w", err)
	}

	fmt.Println("seed ok")
	fmt.Printf("  resource:     %s (%s)\n", indicator, resourceID)
	fmt.Printf("  application:  %s\n", appID)
	fmt.Printf("  user:         %s (%s)\n", userEmail, aliceID)
	fmt.Printf("  member:       %s (%s)\n", memberEmail, bobID)
	fmt.Printf("  orgs:         org-acme, org-initech\n")
	return nil
}
