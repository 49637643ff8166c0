// Package rstyle carries the R script scaffold and the ggplot style guide,
// and applies the guide's mechanical optimizations to plain script text.
// It never touches session state.
package rstyle

import "strings"

// Scaffold is the header written into newly created R scripts.
const Scaffold = `# ---- Packages ----
library(ggplot2)

# ---- Functions ----

# ---- Main ----

`

// StyleGuide is returned alongside style-check results when issues are
// detected.
const StyleGuide = `
# ggplot Style Guide - One-Time Code Optimization

## Core Principles:
1. **Assignment**: Always use = instead of <-
2. **Theme**: Use theme_minimal() or theme_classic() with base_size=14
3. **Colors**: Muted palettes (Set2 for categorical, viridis for continuous)
4. **Dimensions**: Optimize for 5x4 inches (width x height)
5. **Typography**: Base size >= 14pt for readability
6. **Visibility**: Points >= 2.5, lines >= 0.8 width
7. **Export**: Always save with dpi=800

## Color Palette Guidelines:
### Categorical Data:
- Set2, Set3, Pastel1, Pastel2, Dark2 (RColorBrewer)
- Avoid default ggplot2 colors

### Continuous Data:
- viridis, magma, plasma, inferno, cividis
- Colorblind-friendly by default

### Diverging Data:
- RdBu, RdYlBu, Spectral, PuOr, BrBG
- Center at meaningful value

## Automatic Optimizations:
- Replace theme_gray() with theme_minimal(base_size=14)
- Convert <- to = throughout
- Add color scales if missing (no defaults)
- Optimize dimensions to 5x4 inches
- Ensure dpi=800 for all exports
- Humanize variable names in labels
`

// Optimize applies the guide's mechanical rewrites to code and reports
// each change made, in order. The change list is never nil, so it always
// serializes as a JSON array.
func Optimize(code string) (string, []string) {
	optimized := code
	changes := []string{}

	if strings.Contains(optimized, "<-") {
		optimized = strings.ReplaceAll(optimized, "<-", "=")
		changes = append(changes, "Replaced <- with = for assignments")
	}

	if strings.Contains(optimized, "theme_gray()") || strings.Contains(optimized, "theme_grey()") {
		optimized = strings.ReplaceAll(optimized, "theme_gray()", "theme_minimal(base_size=14)")
		optimized = strings.ReplaceAll(optimized, "theme_grey()", "theme_minimal(base_size=14)")
		changes = append(changes, "Replaced default theme with theme_minimal(base_size=14)")
	}

	if strings.Contains(optimized, "ggsave(") && !strings.Contains(optimized, "dpi=") {
		optimized = strings.ReplaceAll(optimized, "ggsave(", "ggsave(dpi=800, ")
		changes = append(changes, "Added dpi=800 to ggsave for high quality output")
	}

	if strings.Contains(optimized, "ggsave(") && !strings.Contains(optimized, "width=") {
		optimized = strings.ReplaceAll(optimized, "ggsave(", "ggsave(width=5, height=4, ")
		changes = append(changes, "Added optimal dimensions (5x4 inches) to ggsave")
	}

	return optimized, changes
}

// Report is the result of analyzing a piece of ggplot code.
type Report struct {
	OptimizedCode string
	Changes       []string
	Issues        []string
	Suggestions   []string
}

// Check analyzes code against the style guide, returning the optimized
// form plus detected issues and suggestions.
func Check(code string) Report {
	optimized, changes := Optimize(code)
	rep := Report{
		OptimizedCode: optimized,
		Changes:       changes,
		Issues:        []string{},
		Suggestions:   []string{},
	}

	if !strings.Contains(code, "theme_") {
		rep.Issues = append(rep.Issues, "No theme specified")
		rep.Suggestions = append(rep.Suggestions,
			"Add theme_minimal(base_size=14) for clean, readable plots")
	}

	if strings.Contains(code, "ggplot(") && !strings.Contains(code, "scale_") {
		rep.Issues = append(rep.Issues, "No explicit color scale")
		rep.Suggestions = append(rep.Suggestions,
			"Add scale_color_brewer(palette='Set2') for categorical or scale_color_viridis() for continuous")
	}

	if !strings.Contains(code, "labs(") && !strings.Contains(code, "xlab(") && !strings.Contains(code, "ylab(") {
		rep.Issues = append(rep.Issues, "No axis labels specified")
		rep.Suggestions = append(rep.Suggestions,
			"Add descriptive labels with labs(x='...', y='...', title='...')")
	}

	if !strings.Contains(code, "ggsave(") {
		rep.Suggestions = append(rep.Suggestions,
			"Remember to save with ggsave('filename.png', width=5, height=4, dpi=800)")
	}

	return rep
}
