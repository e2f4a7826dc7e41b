//go:build race

package nestjson

const raceEnabled = true
