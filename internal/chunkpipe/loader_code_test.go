package chunkpipe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodeLoader_Go_OneUnitPerFunction(t *testing.T) {
	src := []byte(`package main

import "fmt"

func main() {
	fmt.Println("hi")
}

func helper() int {
	return 1
}
`)
	units, err := CodeLoader{}.Load("main.go", src)
	require.NoError(t, err)
	require.NotEmpty(t, units)

	var funcUnits int
	for _, u := range units {
		if strings.Contains(u.Text, "func main()") || strings.Contains(u.Text, "func helper()") {
			funcUnits++
		}
	}
	require.Equal(t, 2, funcUnits)
}

func TestCodeLoader_FallsBackToLineLoaderForUnknownExtension(t *testing.T) {
	units, err := CodeLoader{}.Load("notes.txt", []byte("one\ntwo\n"))
	require.NoError(t, err)
	require.Len(t, units, 2)
}

func TestCodeLoader_FallsBackWhenNoTopLevelNodesFound(t *testing.T) {
	units, err := CodeLoader{}.Load("empty.go", []byte("package main\n"))
	require.NoError(t, err)
	require.Len(t, units, 1)
	require.Equal(t, "package main\n", units[0].Text)
}
