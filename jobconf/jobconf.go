// Package jobconf records which staged files a distributed job ships to its
// workers and which of them go on the worker classpath.
//
// Registrations are stored as separator-joined strings under fixed keys of a
// job Configuration. Appends are read-modify-write and skip values that are
// already present, so a path is registered at most once no matter how many
// times it is added.
package jobconf

import (
	"slices"
	"strings"
	"sync"
)

// Configuration keys consumed by the job-submission layer.
const (
	KeyCacheFiles     = "mapred.cache.files"
	KeyClasspathFiles = "mapred.job.classpath.files"
	KeyCreateSymlink  = "mapred.create.symlink"
)

// DefaultSeparator joins registered paths.
const DefaultSeparator = ":"

// Configuration is a string key/value sink for job settings.
type Configuration interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// MapConfiguration is an in-process Configuration safe for concurrent use.
type MapConfiguration struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMapConfiguration returns an empty MapConfiguration.
func NewMapConfiguration() *MapConfiguration {
	return &MapConfiguration{values: make(map[string]string)}
}

// Get returns the value stored under key.
func (c *MapConfiguration) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok
}

// Set stores value under key.
func (c *MapConfiguration) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.values == nil {
		c.values = make(map[string]string)
	}
	c.values[key] = value
}

// Keys returns the stored keys in sorted order.
func (c *MapConfiguration) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Registrar appends registrations to a Configuration.
type Registrar struct {
	// Separator joins entries. Empty means DefaultSeparator.
	Separator string
}

// NewRegistrar returns a Registrar using sep, or DefaultSeparator when sep
// is empty.
func NewRegistrar(sep string) Registrar {
	return Registrar{Separator: sep}
}

func (r Registrar) sep() string {
	if r.Separator == "" {
		return DefaultSeparator
	}
	return r.Separator
}

// AddFileToClassPath registers p as a classpath file and as a cache file.
func (r Registrar) AddFileToClassPath(conf Configuration, p string) {
	r.appendUnique(conf, KeyClasspathFiles, p)
	r.appendUnique(conf, KeyCacheFiles, p)
}

// AddCachedFiles registers paths as cache files only.
func (r Registrar) AddCachedFiles(conf Configuration, paths ...string) {
	for _, p := range paths {
		r.appendUnique(conf, KeyCacheFiles, p)
	}
}

// AddCacheDirectory registers dir as a single cache unit linked under name
// in the worker's working directory.
func (r Registrar) AddCacheDirectory(conf Configuration, dir, name string) {
	r.appendUnique(conf, KeyCacheFiles, dir+"#"+name)
}

// AddCachedFilesToClasspath registers every path on the classpath and turns
// on symlink creation for cache entries.
func (r Registrar) AddCachedFilesToClasspath(conf Configuration, paths []string) {
	for _, p := range paths {
		r.AddFileToClassPath(conf, p)
	}
	conf.Set(KeyCreateSymlink, "yes")
}

// CacheFiles returns the registered cache files in order.
func (r Registrar) CacheFiles(conf Configuration) []string {
	return r.split(conf, KeyCacheFiles)
}

// ClasspathFiles returns the registered classpath files in order.
func (r Registrar) ClasspathFiles(conf Configuration) []string {
	return r.split(conf, KeyClasspathFiles)
}

func (r Registrar) split(conf Configuration, key string) []string {
	v, ok := conf.Get(key)
	if !ok || v == "" {
		return nil
	}
	return strings.Split(v, r.sep())
}

// appendUnique adds value to key unless it is already present. Membership
// is checked on separator boundaries of the stored string, so values that
// contain the separator themselves are still found.
func (r Registrar) appendUnique(conf Configuration, key, value string) {
	sep := r.sep()
	v, ok := conf.Get(key)
	if !ok || v == "" {
		conf.Set(key, value)
		return
	}
	if contains(v, value, sep) {
		return
	}
	conf.Set(key, v+sep+value)
}

func contains(v, value, sep string) bool {
	return v == value ||
		strings.HasPrefix(v, value+sep) ||
		strings.HasSuffix(v, sep+value) ||
		strings.Contains(v, sep+value+sep)
}
