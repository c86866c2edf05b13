package core

import (
	"fmt"
	"strings"

	packageurl "github.com/package-url/packageurl-go"
)

// PURL wraps packageurl.PackageURL with npm naming helpers.
type PURL struct {
	packageurl.PackageURL
}

// FullName returns the package name as npm spells it, e.g. "@babel/core".
func (p PURL) FullName() string {
	if p.Namespace == "" {
		return p.Name
	}
	// packageurl-go keeps @ in the namespace, so "@babel" + "/" + "core" = "@babel/core"
	ns := p.Namespace
	if !strings.HasPrefix(ns, "@") {
		ns = "@" + ns
	}
	return ns + "/" + p.Name
}

// ParsePURL parses a Package URL string into its components.
func ParsePURL(purl string) (*PURL, error) {
	p, err := packageurl.FromString(purl)
	if err != nil {
		return nil, err
	}
	return &PURL{p}, nil
}

// PackageName normalises a configured package reference. Plain names are
// returned unchanged; npm PURLs such as "pkg:npm/%40payloadcms/next" are
// reduced to their full name.
func PackageName(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if !strings.HasPrefix(ref, "pkg:") {
		return ref, nil
	}

	p, err := ParsePURL(ref)
	if err != nil {
		return "", err
	}
	if p.Type != packageurl.TypeNPM {
		return "", fmt.Errorf("unsupported package type %q in %s", p.Type, ref)
	}
	return p.FullName(), nil
}

// NPMPURL builds the PURL string for an npm package, with version if given.
func NPMPURL(name, version string) string {
	namespace := ""
	pkgName := name
	if strings.HasPrefix(name, "@") && strings.Contains(name, "/") {
		parts := strings.SplitN(name, "/", 2)
		namespace = parts[0]
		pkgName = parts[1]
	}
	return packageurl.NewPackageURL(packageurl.TypeNPM, namespace, pkgName, version, nil, "").ToString()
}
