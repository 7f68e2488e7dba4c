package probe

import (
	"net/http"
	"testing"
)

func mustTarget(t *testing.T, raw string) *TargetInfo {
	t.Helper()
	info, err := ParseTarget(raw)
	if err != nil {
		t.Fatalf("ParseTarget(%q): %v", raw, err)
	}
	return info
}

func TestFindSensitiveInfo_Categories(t *testing.T) {
	content := `Contact: joao.silva@example.com.br or maria@example.org
	CPF: 123.456.789-01
	CNPJ: 12.345.678/0001-90
	api_key = "sk_live_abcdef1234567890"
	`

	findings := FindSensitiveInfo(content)

	byKind := map[string]ContentFinding{}
	for _, f := range findings {
		byKind[f.Kind] = f
	}

	if f, ok := byKind["Email"]; !ok || f.Count != 2 {
		t.Errorf("expected 2 email matches, got %+v", byKind["Email"])
	}
	if _, ok := byKind["CPF"]; !ok {
		t.Error("expected CPF finding")
	}
	if _, ok := byKind["CNPJ"]; !ok {
		t.Error("expected CNPJ finding")
	}
	if _, ok := byKind["API Key"]; !ok {
		t.Error("expected API Key finding")
	}
}

func TestFindSensitiveInfo_SampleCap(t *testing.T) {
	content := "a@x.com b@x.com c@x.com d@x.com e@x.com"

	findings := FindSensitiveInfo(content)
	if len(findings) != 1 {
		t.Fatalf("expected one category, got %d", len(findings))
	}
	if findings[0].Count != 5 {
		t.Errorf("expected 5 occurrences, got %d", findings[0].Count)
	}
	if len(findings[0].Samples) != 3 {
		t.Errorf("expected samples capped at 3, got %d", len(findings[0].Samples))
	}
}

func TestFindSensitiveInfo_CleanContent(t *testing.T) {
	if findings := FindSensitiveInfo("<html><body>nothing interesting here</body></html>"); len(findings) != 0 {
		t.Errorf("expected no findings, got %+v", findings)
	}
}

func TestAnalyzeContent_ExternalResources(t *testing.T) {
	target := mustTarget(t, "https://example.com")
	body := []byte(`<html><head>
		<script src="https://cdn.thirdparty.io/lib.js"></script>
		<script src="/local/app.js"></script>
		<link rel="stylesheet" href="https://fonts.external.org/style.css">
		<link rel="stylesheet" href="/assets/main.css">
	</head><body></body></html>`)

	result := AnalyzeContent(target, http.Header{}, body)

	if result.Status != StatusOK {
		t.Fatalf("expected OK, got %s (%s)", result.Status, result.Error)
	}
	if len(result.ExternalResources) != 2 {
		t.Fatalf("expected 2 external resources, got %d: %+v", len(result.ExternalResources), result.ExternalResources)
	}
	for _, res := range result.ExternalResources {
		if res.Type == "script" && res.Risk != "MEDIUM" {
			t.Errorf("external script should be MEDIUM risk, got %s", res.Risk)
		}
		if res.Type == "stylesheet" && res.Risk != "LOW" {
			t.Errorf("external stylesheet should be LOW risk, got %s", res.Risk)
		}
	}
}

func TestAnalyzeContent_SameHostResourceNotExternal(t *testing.T) {
	target := mustTarget(t, "https://example.com")
	body := []byte(`<script src="https://example.com/app.js"></script>`)

	result := AnalyzeContent(target, http.Header{}, body)
	if len(result.ExternalResources) != 0 {
		t.Errorf("same-host script flagged external: %+v", result.ExternalResources)
	}
}

func TestAnalyzeContent_Technologies(t *testing.T) {
	target := mustTarget(t, "https://example.com")
	headers := http.Header{}
	headers.Set("Server", "nginx/1.18.0")
	headers.Set("X-Powered-By", "Express")
	body := []byte(`<html><head><meta name="generator" content="WordPress 6.2"></head></html>`)

	result := AnalyzeContent(target, headers, body)

	if len(result.Technologies) != 3 {
		t.Fatalf("expected 3 technologies, got %d: %+v", len(result.Technologies), result.Technologies)
	}

	var foundMeta bool
	for _, tech := range result.Technologies {
		if tech.Source == "Meta tag" && tech.Name == "WordPress 6.2" {
			foundMeta = true
		}
	}
	if !foundMeta {
		t.Error("expected meta generator technology")
	}
}

func TestAnalyzeContent_FormInventory(t *testing.T) {
	target := mustTarget(t, "http://example.com")
	body := []byte(`<form action="/login" method="post">
		<input type="text" name="user">
		<input type="password" name="pass">
	</form>`)

	result := AnalyzeContent(target, http.Header{}, body)

	if len(result.Forms) != 1 {
		t.Fatalf("expected 1 form, got %d", len(result.Forms))
	}
	form := result.Forms[0]
	if form.Method != "POST" || form.Inputs != 2 {
		t.Errorf("unexpected form summary: %+v", form)
	}
	if len(form.SecurityIssues) == 0 {
		t.Error("password field posted without HTTPS action should be flagged")
	}
}

func TestFormActionSecure_ResolvesAgainstPage(t *testing.T) {
	httpsPage := mustTarget(t, "https://example.com")
	httpPage := mustTarget(t, "http://example.com")

	tests := []struct {
		name   string
		action string
		target *TargetInfo
		want   bool
	}{
		{name: "relative action inherits https page", action: "/login", target: httpsPage, want: true},
		{name: "relative action inherits http page", action: "/login", target: httpPage, want: false},
		{name: "empty action inherits page", action: "", target: httpsPage, want: true},
		{name: "absolute https action", action: "https://auth.example.com/login", target: httpPage, want: true},
		{name: "absolute http action on https page", action: "http://example.com/login", target: httpsPage, want: false},
		{name: "https in host is not a scheme", action: "http://xhttps.evil/login", target: httpsPage, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formActionSecure(tt.action, tt.target); got != tt.want {
				t.Errorf("formActionSecure(%q) = %v, want %v", tt.action, got, tt.want)
			}
		})
	}
}

func TestAnalyzeContent_RelativeActionOnHTTPSPageNotFlagged(t *testing.T) {
	target := mustTarget(t, "https://example.com")
	body := []byte(`<form action="/login" method="post">
		<input type="password" name="pass">
	</form>`)

	result := AnalyzeContent(target, http.Header{}, body)

	if len(result.Forms) != 1 {
		t.Fatalf("expected 1 form, got %d", len(result.Forms))
	}
	if len(result.Forms[0].SecurityIssues) != 0 {
		t.Errorf("relative action on an HTTPS page is secure: %+v", result.Forms[0].SecurityIssues)
	}
}
