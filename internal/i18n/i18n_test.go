package i18n

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestMatch(t *testing.T) {
	cases := map[string]string{
		"":                        LocaleZH,
		"en":                      LocaleEN,
		"en-GB,en;q=0.8":          LocaleEN,
		"zh-TW":                   LocaleTW,
		"zh-HK":                   LocaleTW,
		"zh-CN,zh;q=0.9,en;q=0.5": LocaleZH,
		"fr-FR":                   LocaleZH,
		"!!invalid":               LocaleZH,
	}
	for raw, want := range cases {
		if got := Match(raw); got != want {
			t.Fatalf("Match(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestResolveLocalePrefersQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/v1/orders?lang=en", nil)
	c.Request.Header.Set("Accept-Language", "zh-TW")
	if got := ResolveLocale(c); got != LocaleEN {
		t.Fatalf("expected en-US, got %s", got)
	}
}

func TestTFallsBackToDefaultLocale(t *testing.T) {
	if got := T(LocaleTW, "error.staff_only"); got != messages[LocaleZH]["error.staff_only"] {
		t.Fatalf("expected fallback to zh-CN, got %s", got)
	}
	if got := T(LocaleEN, "missing.key"); got != "missing.key" {
		t.Fatalf("expected key echoed, got %s", got)
	}
	if got := Sprintf(LocaleEN, "email.order_status.subject", "Shipped"); got != "Order status update: Shipped" {
		t.Fatalf("unexpected subject: %s", got)
	}
}
