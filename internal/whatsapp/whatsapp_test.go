package whatsapp

import (
	"net/url"
	"strings"
	"testing"
)

func TestLinkEncodesMessage(t *testing.T) {
	l := NewLinker("21655338664")

	link := l.PurchaseInquiry("Android TV Box Pro", "250 DT")
	if !strings.HasPrefix(link, "https://wa.me/21655338664?text=") {
		t.Fatalf("unexpected link shape: %s", link)
	}

	parsed, err := url.Parse(link)
	if err != nil {
		t.Fatalf("link does not parse: %v", err)
	}
	text := parsed.Query().Get("text")
	if text != "Hello! I'm interested in purchasing Android TV Box Pro. Price: 250 DT. Please provide more details." {
		t.Fatalf("unexpected message: %q", text)
	}
}

func TestGenericLink(t *testing.T) {
	l := NewLinker("21655338664")

	parsed, err := url.Parse(l.Generic())
	if err != nil {
		t.Fatalf("link does not parse: %v", err)
	}
	if parsed.Host != "wa.me" || parsed.Path != "/21655338664" {
		t.Fatalf("unexpected target: %s", parsed)
	}
	if got := parsed.Query().Get("text"); !strings.Contains(got, "IPTV services") {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestLinkWithoutMessage(t *testing.T) {
	l := NewLinker("21655338664")
	if got := l.Link(""); got != "https://wa.me/21655338664" {
		t.Fatalf("unexpected bare link: %s", got)
	}
}

func TestDownloadRequestMentionsOffer(t *testing.T) {
	l := NewLinker("21655338664")
	parsed, err := url.Parse(l.DownloadRequest("IBO Player"))
	if err != nil {
		t.Fatalf("link does not parse: %v", err)
	}
	if got := parsed.Query().Get("text"); !strings.Contains(got, "IBO Player") {
		t.Fatalf("offer name missing from message: %q", got)
	}
}
