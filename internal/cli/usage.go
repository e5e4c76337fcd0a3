package cli

import (
	"flag"
	"fmt"

	"contactmap/internal/version"
)

// installUsage sets the help text of fs. Defaults are read back from the
// registered flags so the text never drifts from the code.
func installUsage(fs *flag.FlagSet, name string) {
	fs.Usage = func() {
		out := fs.Output()
		def := func(flagName string) string {
			if f := fs.Lookup(flagName); f != nil {
				return f.DefValue
			}
			return ""
		}

		fmt.Fprintf(out, "%s – residue contact maps from experimental and predicted structures\n\n", name)
		fmt.Fprintf(out, "Version: %s\n\n", version.Version)
		fmt.Fprintf(out, "Usage:\n  %s [options] --dataset FILE.csv\n  %s [options] FILE.csv\n", name, name)

		fmt.Fprintln(out, "\nInput:")
		fmt.Fprintln(out, "      --dataset file          CSV with scop_id, sequence, scop_class, pdb_id, uniprot_id [*]")
		fmt.Fprintln(out, "      --sequences file        FASTA (e.g. ASTRAL) filling empty sequence cells by scop_id")
		fmt.Fprintf(out, "      --pdb-dir dir           Experimental structures (pdb<id>.ent) [%s]\n", def("pdb-dir"))
		fmt.Fprintf(out, "      --af-dir dir            Predicted structures (<uniprot>.pdb) [%s]\n", def("af-dir"))
		fmt.Fprintln(out, "      --config file           YAML settings file")
		fmt.Fprintln(out, "      --env file              .env file with CONTACTMAP_* settings (repeatable)")

		fmt.Fprintln(out, "\nMaps:")
		fmt.Fprintf(out, "      --threshold float       Contact distance threshold [%s]\n", def("threshold"))
		fmt.Fprintf(out, "      --target-size int       Output map side length [%s]\n", def("target-size"))
		fmt.Fprintf(out, "      --min-points int        Minimum aligned residues per structure [%s]\n", def("min-points"))
		fmt.Fprintf(out, "      --first-chain           Use only the first chain of each structure [%s]\n", def("first-chain"))

		fmt.Fprintln(out, "\nPerformance:")
		fmt.Fprintf(out, "  -t, --threads int           Worker threads (0=all CPUs) [%s]\n", def("threads"))
		fmt.Fprintf(out, "      --max-open int          Structure files read at once [%s]\n", def("max-open"))

		fmt.Fprintln(out, "\nOutput:")
		fmt.Fprintf(out, "  -o, --out dir               Output directory [%s]\n", def("out"))
		fmt.Fprintln(out, "      --upload url            Copy the artifacts to s3://bucket/prefix")
		fmt.Fprintf(out, "      --region string         AWS region for --upload [%s]\n", def("region"))
		fmt.Fprintf(out, "      --no-match-exit-code int  Exit code when no record is kept [%s]\n", def("no-match-exit-code"))

		fmt.Fprintln(out, "\nMiscellaneous:")
		fmt.Fprintf(out, "      --progress              Show a progress bar on stderr [%s]\n", def("progress"))
		fmt.Fprintf(out, "  -q, --quiet                 Warnings and errors only [%s]\n", def("quiet"))
		fmt.Fprintf(out, "      --verbose               Log every skipped record [%s]\n", def("verbose"))
		fmt.Fprintln(out, "  -v, --version               Print version and exit")
		fmt.Fprintln(out, "  -h, --help                  Show this help and exit")
	}
}
