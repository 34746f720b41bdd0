// SPDX-License-Identifier: MPL-2.0

// Package catalog holds the static mapping from workflow tool names to the
// catalog environment that provides them. The table is populated at init and
// never mutated afterwards.
package catalog

const (
	// EnvCore bundles the core bioinformatics tools.
	EnvCore = "xdxtools-core"
	// EnvR bundles R/Bioconductor packages plus qualimap.
	EnvR = "xdxtools-r"
	// EnvSnakemake bundles the workflow engine.
	EnvSnakemake = "xdxtools-snakemake"
	// EnvExtra bundles additional visualization and analysis tools.
	EnvExtra = "xdxtools-extra"
)

// toolEnvironments maps a tool name to its default environment.
var toolEnvironments = map[string]string{
	// QC tools
	"fastqc":   EnvCore,
	"multiqc":  EnvCore,
	"seqkit":   EnvCore,
	"seqtk":    EnvCore,
	"samtools": EnvCore,
	"picard":   EnvCore,
	// Methylation tools
	"bismark":     EnvCore,
	"trim_galore": EnvCore,
	"trim-galore": EnvCore,
	// RNA-seq tools
	"star":        EnvCore,
	"htseq-count": EnvCore,
	"htseq":       EnvCore,
	"rmats":       EnvCore,
	// ChIP-seq/ATAC-seq core tools
	"macs2":                EnvCore,
	"bwa":                  EnvCore,
	"bowtie2":              EnvCore,
	"phantompeakqualtools": EnvCore,
	"bwa-index":            EnvCore,
	"bowtie2-build":        EnvCore,
	// R and qualimap
	"qualimap": EnvR,
	"R":        EnvR,
	"Rscript":  EnvR,
	// Workflow engine
	"snakemake": EnvSnakemake,
	"jinja2":    EnvSnakemake,
	"click":     EnvSnakemake,
	"git":       EnvSnakemake,
	// Advanced bioinformatics
	"bedtools": EnvExtra,
	"bcftools": EnvExtra,
	"vcftools": EnvExtra,
	"tabix":    EnvExtra,
	// Advanced ChIP-seq/ATAC-seq tools
	"deepTools": EnvExtra,
	"genrich":   EnvExtra,
	"homer":     EnvExtra,
	// Data science & visualization
	"jupyter":      EnvExtra,
	"jupyterlab":   EnvExtra,
	"flask":        EnvExtra,
	"dash":         EnvExtra,
	"streamlit":    EnvExtra,
	"scikit-learn": EnvExtra,
	"scipy":        EnvExtra,
	"statsmodels":  EnvExtra,
}

// EnvironmentFor returns the default environment for a tool name.
// The second return value is false when the tool is not in the catalog.
func EnvironmentFor(tool string) (string, bool) {
	env, ok := toolEnvironments[tool]
	return env, ok
}

// ToolsFor returns the tools provided by the given environment, in no
// particular order.
func ToolsFor(env string) []string {
	var tools []string
	for tool, e := range toolEnvironments {
		if e == env {
			tools = append(tools, tool)
		}
	}
	return tools
}

// Environments returns the catalog environment names in creation priority
// order.
func Environments() []string {
	return []string{EnvCore, EnvR, EnvSnakemake, EnvExtra}
}

// MarkerTools returns the marker executables whose presence inside an
// environment's installation prefix signals a healthy installation. Unknown
// environment names have no markers.
func MarkerTools(env string) []string {
	switch env {
	case EnvCore:
		return []string{"python", "samtools", "fastqc"}
	case EnvR:
		return []string{"R", "Rscript"}
	case EnvSnakemake:
		return []string{"python", "snakemake"}
	case EnvExtra:
		return []string{"python", "jupyter"}
	default:
		return nil
	}
}
