package imports_test

import (
	"fmt"

	"github.com/matzehuels/buildsync/pkg/imports"
)

func ExampleParse() {
	src := `import React from "react"
import { merge } from 'lodash/fp'
const fs = require("fs")
const util = require("./util")
`
	fmt.Println(imports.Parse(src))
	// Output: [react lodash]
}

func ExamplePackageName() {
	for _, spec := range []string{"lodash/fp", "@babel/core/lib/config", "./util", "node:fs"} {
		name, ok := imports.PackageName(spec)
		fmt.Printf("%q %v\n", name, ok)
	}
	// Output:
	// "lodash" true
	// "@babel/core" true
	// "" false
	// "" false
}
