package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/mergeforward/internal/utils/path"
)

func TestHomeExpanderExpand(t *testing.T) {
	homeDirectory := filepath.Join(string(filepath.Separator), "home", "buildslave")
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) { return homeDirectory, nil })

	testCases := []struct {
		candidate string
		expected  string
	}{
		{candidate: "~", expected: homeDirectory},
		{candidate: "~/builds/properties.yaml", expected: filepath.Join(homeDirectory, "builds", "properties.yaml")},
		{candidate: "~buildbot/properties.yaml", expected: "~buildbot/properties.yaml"},
		{candidate: "/srv/builds", expected: "/srv/builds"},
		{candidate: ".", expected: "."},
		{candidate: "", expected: ""},
	}

	for _, testCase := range testCases {
		t.Run(testCase.candidate, func(t *testing.T) {
			require.Equal(t, testCase.expected, expander.Expand(testCase.candidate))
		})
	}
}

func TestHomeExpanderLeavesPathWhenHomeUnknown(t *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) { return "", errors.New("no home") })
	require.Equal(t, "~/properties.yaml", expander.Expand("~/properties.yaml"))
}
