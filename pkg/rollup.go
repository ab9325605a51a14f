package pkg

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const RollupConfigFileName = "rollup.config.js"

// RollupConfigTemplate builds CJS and ESM bundles from src/entry.ts and a
// single declaration bundle from the emitted types. Output paths come from
// the main, module and types fields of package.json.
const RollupConfigTemplate = `// Reference: https://dev.to/alexeagleson/how-to-create-and-publish-a-react-component-library-2oe
// Action: Move react to peerDependencies from devDependencies
import resolve from "@rollup/plugin-node-resolve";
import commonjs from "@rollup/plugin-commonjs";
import typescript from "@rollup/plugin-typescript";
import postcss from "rollup-plugin-postcss";
import dts from "rollup-plugin-dts";
import { terser } from "rollup-plugin-terser";
import peerDepsExternal from "rollup-plugin-peer-deps-external";

const packageJson = require("./package.json");

const inputDir = "src";
const inputFileBase = "entry";
const inputFile = ` + "`${inputFileBase}.ts`" + `;

const config = [
  {
    input: ` + "`${inputDir}/${inputFile}`" + `,
    output: [
      {
        file: packageJson.main,
        format: "cjs",
        sourcemap: true,
      },
      {
        file: packageJson.module,
        format: "esm",
        sourcemap: true,
      },
    ],
    plugins: [
      peerDepsExternal(),
      resolve(),
      commonjs(),
      typescript({ tsconfig: "./tsconfig.json" }),
      postcss(),
      terser(),
    ],
  },
  {
    input: ` + "`dist/esm/types/${inputFileBase}.d.ts`" + `,
    output: [{ file: packageJson.types, format: "esm" }],
    plugins: [dts()],
    external: [/\.css$/],
  },
];
export default config;`

// WriteRollupConfig writes RollupConfigTemplate to path. An existing file is
// only replaced when assumeYes is set or the operator confirms. It reports
// whether the file was written.
func WriteRollupConfig(path string, p *Prompter, assumeYes bool) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return false, err
	case !assumeYes:
		overwrite, err := p.Confirm(fmt.Sprintf("%s already exists. Overwrite? (y/N) ", filepath.Base(path)))
		if err != nil {
			return false, err
		}
		if !overwrite {
			p.Println("Keeping existing", filepath.Base(path))
			return false, nil
		}
	}

	if err := os.WriteFile(path, []byte(RollupConfigTemplate), 0644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}
