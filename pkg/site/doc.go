// Package site loads the static content of the hackathon site (event copy,
// schedule, footer links and theme) from YAML. Rich text is sanitised on load
// so templates can emit it unescaped.
package site
