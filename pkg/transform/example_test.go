package transform_test

import (
	"fmt"

	"github.com/matzehuels/buildsync/pkg/transform"
)

func ExampleMerge() {
	base := transform.Config{
		"presets": []any{"zero"},
		"plugins": []any{"a", "b"},
	}
	override := transform.Config{
		"plugins": []any{"a", "b", "c"},
		"env":     map[string]any{"test": true},
	}

	merged, err := transform.Merge(base, override)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(merged["presets"], merged["plugins"], merged["env"])
	// Output: [zero] [a b c] map[test:true]
}
