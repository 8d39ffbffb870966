// Command redshift estimates the redshift of an observed spectrum by
// cross-correlation and template matching.
//
// Usage:
//
//	redshift [--config file] <command> [flags]
//
// Examples:
//
//	redshift run --config redshift.yaml
//	redshift xcorr observed.csv template.csv --zmax 0.5 --method fft
//	redshift match observed.csv library.yaml --z 0.05,0.1,0.15 --workers 8
//	redshift continuum observed.csv --region 4000:4200 --region 5000:5400 > flat.csv
//	redshift fetch https://example.org/templates/elliptical.txt
package main

func main() {
	Execute()
}
