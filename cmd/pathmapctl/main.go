// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Command pathmapctl is a small, scriptable driver over PathMap: build
// one PathMap, apply one operation, print what happened.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/gaissmai/pathmap"
)

var logger zerolog.Logger

func main() {
	var (
		op       = pflag.StringP("op", "p", "insert", "operation: insert|get|remove|dump|iter")
		path     = pflag.StringP("path", "k", "", "path (interpreted as raw bytes of the given string)")
		value    = pflag.StringP("value", "v", "", "value for insert")
		logLevel = pflag.String("log-level", "info", "zerolog level: debug|info|warn|error")
	)
	pflag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	m := pathmap.New[string]()
	seed := []string{"hello", "help", "helpful", "world"}
	for _, p := range seed {
		m.Insert([]byte(p), strings.ToUpper(p))
	}

	if err := run(m, *op, *path, *value); err != nil {
		logger.Error().Err(err).Msg("operation failed")
		os.Exit(1)
	}
}

func run(m *pathmap.PathMap[string], op, path, value string) error {
	switch op {
	case "insert":
		old, replaced := m.Insert([]byte(path), value)
		logger.Info().Str("path", path).Str("value", value).Bool("replaced", replaced).Str("old", old).Msg("insert")
	case "get":
		val, ok := m.GetValAt([]byte(path))
		if !ok {
			fmt.Printf("%q: <absent>\n", path)
			return nil
		}
		fmt.Printf("%q: %v\n", path, val)
	case "remove":
		old, removed := m.RemoveValAt([]byte(path))
		logger.Info().Str("path", path).Bool("removed", removed).Str("old", old).Msg("remove")
	case "dump":
		z := m.ReadZipper()
		dump(z, nil)
	case "iter":
		for p, val := range m.Iter() {
			fmt.Printf("%q -> %v\n", p, val)
		}
	default:
		return fmt.Errorf("unknown op %q", op)
	}
	fmt.Printf("valCount=%d\n", m.ValCount())
	return nil
}

// dump walks a ReadZipper depth-first, printing every path with a value.
func dump(z *pathmap.ReadZipper[string], prefix []byte) {
	if val, ok := z.Val(); ok {
		fmt.Printf("%s -> %v\n", prefix, val)
	}
	mask := z.ChildMask()
	for _, b := range mask.All() {
		if !z.DescendByte(b) {
			continue
		}
		dump(z, append(append([]byte(nil), prefix...), b))
		z.AscendByte()
	}
}
