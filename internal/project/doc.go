// Package project loads and validates the consuming project's configuration
// (funcn.json, sygaldry.json, or sygaldry.yaml). The configuration maps every
// component type to a destination directory and supplies project-wide template
// defaults such as provider and model.
package project
