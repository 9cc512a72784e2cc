package scrape

import "testing"

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"$1,299.00", 1299.00, true},
		{"$19.99", 19.99, true},
		{"Now £45.50!", 45.50, true},
		{"1299", 1299, true},
		{"€1.299.00", 1299.00, true},
		{"", 0, false},
		{"Currently unavailable", 0, false},
		{"$", 0, false},
	}
	for _, c := range cases {
		got, ok := ParsePrice(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("ParsePrice(%q) = %v, %v; want %v, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestInferCurrency(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"$1,299.00", "USD"},
		{"€45,00", "EUR"},
		{"£12.30", "GBP"},
		{"¥1200", "JPY"},
		{"1299.00", "USD"},
	}
	for _, c := range cases {
		if got := InferCurrency(c.in); got != c.want {
			t.Errorf("InferCurrency(%q) = %q; want %q", c.in, got, c.want)
		}
	}
}

func TestInferAvailability(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"In Stock", true},
		{"", true},
		{"Sold Out", false},
		{"Currently unavailable.", false},
		{"Out of stock online", false},
		{"Only 3 left in stock", true},
	}
	for _, c := range cases {
		if got := InferAvailability(c.in); got != c.want {
			t.Errorf("InferAvailability(%q) = %v; want %v", c.in, got, c.want)
		}
	}
}

func TestBuildSnapshotMissingFields(t *testing.T) {
	_, missing := BuildSnapshot(Fields{PriceText: "no digits here"}, Amazon, "B0TEST", "https://example.com")
	want := []string{"title", "price"}
	if len(missing) != len(want) || missing[0] != want[0] || missing[1] != want[1] {
		t.Fatalf("missing fields = %v; want %v", missing, want)
	}
}

func TestBuildSnapshotNormalizes(t *testing.T) {
	snap, missing := BuildSnapshot(Fields{
		Title:             "  Widget  ",
		PriceText:         "$1,299.00",
		OriginalPriceText: "$1,499.00",
		AvailabilityText:  "In Stock",
	}, Amazon, "B0TEST", "https://example.com/dp/B0TEST")
	if missing != nil {
		t.Fatalf("unexpected missing fields: %v", missing)
	}
	if snap.CurrentPrice != 1299.00 || snap.Currency != "USD" {
		t.Errorf("price = %v %s; want 1299 USD", snap.CurrentPrice, snap.Currency)
	}
	if snap.OriginalPrice != 1499.00 {
		t.Errorf("original price = %v; want 1499", snap.OriginalPrice)
	}
	if !snap.Available {
		t.Error("expected snapshot to be available")
	}
}

func TestBuildSnapshotDropsLowerOriginalPrice(t *testing.T) {
	snap, _ := BuildSnapshot(Fields{
		Title:             "Widget",
		PriceText:         "$100.00",
		OriginalPriceText: "$80.00",
	}, Walmart, "12345", "https://example.com")
	if snap.OriginalPrice != 0 {
		t.Errorf("original price below current should be dropped, got %v", snap.OriginalPrice)
	}
}
