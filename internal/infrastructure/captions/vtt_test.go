package captions

import (
	"testing"
	"time"
)

const sampleVTT = `WEBVTT
Kind: captions
Language: en

00:00:01.000 --> 00:00:04.000
Hello and welcome to the show.

00:00:04.000 --> 00:00:08.500 align:start position:0%
Today we are <c>talking</c> about pipelines.

2
00:01:02.250 --> 00:01:05.000
Let&#39;s get started.
`

func TestParseVTT(t *testing.T) {
	t.Parallel()

	segments := parseVTT(sampleVTT)
	if len(segments) != 3 {
		t.Fatalf("len(segments) = %d, want 3", len(segments))
	}

	if segments[0].Start != time.Second {
		t.Errorf("segments[0].Start = %v, want 1s", segments[0].Start)
	}
	if segments[0].Text != "Hello and welcome to the show." {
		t.Errorf("segments[0].Text = %q", segments[0].Text)
	}

	if segments[1].Text != "Today we are talking about pipelines." {
		t.Errorf("styling tags not stripped: %q", segments[1].Text)
	}

	want := time.Minute + 2*time.Second + 250*time.Millisecond
	if segments[2].Start != want {
		t.Errorf("segments[2].Start = %v, want %v", segments[2].Start, want)
	}
	if segments[2].Text != "Let's get started." {
		t.Errorf("entities not unescaped: %q", segments[2].Text)
	}
}

func TestParseVTTRollingCaptions(t *testing.T) {
	t.Parallel()

	data := `WEBVTT

00:00:00.000 --> 00:00:02.000
first line

00:00:02.000 --> 00:00:04.000
first line
second line
`
	segments := parseVTT(data)
	if len(segments) != 2 {
		t.Fatalf("len(segments) = %d, want 2", len(segments))
	}
	if segments[0].Text != "first line" {
		t.Errorf("segments[0].Text = %q", segments[0].Text)
	}
	if segments[1].Text != "second line" {
		t.Errorf("rolled-up duplicate not collapsed: %q", segments[1].Text)
	}
}

func TestParseVTTHourTimestamps(t *testing.T) {
	t.Parallel()

	data := `WEBVTT

01:02:03.000 --> 01:02:05.000
deep into the recording
`
	segments := parseVTT(data)
	if len(segments) != 1 {
		t.Fatalf("len(segments) = %d, want 1", len(segments))
	}
	want := time.Hour + 2*time.Minute + 3*time.Second
	if segments[0].Start != want {
		t.Errorf("Start = %v, want %v", segments[0].Start, want)
	}
}

func TestParseVTTCommaDecimals(t *testing.T) {
	t.Parallel()

	data := `WEBVTT

00:00:07,500 --> 00:00:09,000
srt style decimals
`
	segments := parseVTT(data)
	if len(segments) != 1 {
		t.Fatalf("len(segments) = %d, want 1", len(segments))
	}
	if segments[0].Start != 7*time.Second+500*time.Millisecond {
		t.Errorf("Start = %v", segments[0].Start)
	}
}

func TestParseVTTEmptyAndGarbage(t *testing.T) {
	t.Parallel()

	if got := parseVTT(""); len(got) != 0 {
		t.Errorf("parseVTT(empty) = %v, want none", got)
	}
	if got := parseVTT("not a vtt file at all"); len(got) != 0 {
		t.Errorf("parseVTT(garbage) = %v, want none", got)
	}
}

func TestTranscriptFromVTT(t *testing.T) {
	t.Parallel()

	tr := transcriptFromVTT(sampleVTT, "en")
	if tr.Language != "en" {
		t.Errorf("Language = %q, want en", tr.Language)
	}
	if len(tr.Segments) != 3 {
		t.Fatalf("len(Segments) = %d, want 3", len(tr.Segments))
	}
	want := "Hello and welcome to the show.\nToday we are talking about pipelines.\nLet's get started."
	if tr.Text != want {
		t.Errorf("Text = %q, want %q", tr.Text, want)
	}
}
