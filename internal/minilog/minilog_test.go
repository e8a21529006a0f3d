package minilog

import (
	"bytes"
	"strings"
	"testing"
)

func TestFilter(t *testing.T) {
	sink1 := new(bytes.Buffer)

	AddLogger("sink1Level", sink1, DEBUG, false)
	defer DelLogger("sink1Level")

	testString := "test 123"
	testString2 := "test 456"

	Debugln(testString)

	if s1 := sink1.String(); !strings.Contains(s1, testString) {
		t.Fatal("sink1 got:", s1)
	}

	AddFilter("sink1Level", "minilog_test")

	Debugln(testString2)

	if s1 := sink1.String(); strings.Contains(s1, testString2) {
		t.Fatal("sink1 got:", s1)
	}

	DelFilter("sink1Level", "minilog_test")

	Debugln(testString2)

	if s1 := sink1.String(); !strings.Contains(s1, testString2) {
		t.Fatal("sink1 got:", s1)
	}
}

func TestMultilog(t *testing.T) {
	sink1 := new(bytes.Buffer)
	sink2 := new(bytes.Buffer)

	AddLogger("sink1", sink1, DEBUG, false)
	AddLogger("sink2", sink2, DEBUG, false)
	defer DelLogger("sink1")
	defer DelLogger("sink2")

	testString := "test 123"

	Debugln(testString)

	if s1 := sink1.String(); !strings.Contains(s1, testString) {
		t.Fatal("sink1 got:", s1)
	}
	if s2 := sink2.String(); !strings.Contains(s2, testString) {
		t.Fatal("sink2 got:", s2)
	}
}

func TestLogLevels(t *testing.T) {
	sink1 := new(bytes.Buffer)
	sink2 := new(bytes.Buffer)

	AddLogger("sink1Level", sink1, DEBUG, false)
	AddLogger("sink2Level", sink2, INFO, false)
	defer DelLogger("sink1Level")
	defer DelLogger("sink2Level")

	testString := "test 123"

	Debugln(testString)

	if s1 := sink1.String(); !strings.Contains(s1, testString) {
		t.Fatal("sink1 got:", s1)
	}
	if s2 := sink2.String(); len(s2) != 0 {
		t.Fatal("sink2 got:", s2)
	}
}

func TestParseLevel(t *testing.T) {
	for s, want := range map[string]Level{
		"debug": DEBUG,
		"info":  INFO,
		"warn":  WARN,
		"error": ERROR,
		"fatal": FATAL,
	} {
		got, err := ParseLevel(s)
		if err != nil {
			t.Fatalf("ParseLevel(%v): %v", s, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%v) = %v, want %v", s, got, want)
		}
	}

	if _, err := ParseLevel("bogus"); err == nil {
		t.Fatal("expected error for invalid level")
	}
}
