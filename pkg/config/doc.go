/*
Package config loads turtlcore's on-disk YAML configuration using
gopkg.in/yaml.v3, overlaying a parsed document onto documented defaults.
*/
package config
