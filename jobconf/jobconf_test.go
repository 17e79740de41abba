package jobconf

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddFileToClassPath(t *testing.T) {
	tests := []struct {
		name string
		sep  string
		want string
	}{
		{name: "default separator", sep: "", want: "/testing1:/testing2"},
		{name: "custom separator", sep: "J", want: "/testing1J/testing2"},
		{name: "semicolon", sep: ";", want: "/testing1;/testing2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := NewMapConfiguration()
			r := NewRegistrar(tt.sep)

			r.AddFileToClassPath(conf, "/testing1")
			r.AddFileToClassPath(conf, "/testing2")

			got, ok := conf.Get(KeyClasspathFiles)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)

			cache, ok := conf.Get(KeyCacheFiles)
			require.True(t, ok)
			assert.Equal(t, tt.want, cache)
		})
	}
}

func TestAddFileToClassPath_Deduplicates(t *testing.T) {
	conf := NewMapConfiguration()
	r := Registrar{}

	r.AddFileToClassPath(conf, "/lib/a.jar")
	r.AddFileToClassPath(conf, "/lib/b.jar")
	r.AddFileToClassPath(conf, "/lib/a.jar")

	assert.Equal(t, []string{"/lib/a.jar", "/lib/b.jar"}, r.ClasspathFiles(conf))
	assert.Equal(t, []string{"/lib/a.jar", "/lib/b.jar"}, r.CacheFiles(conf))
}

func TestAddFileToClassPath_PathContainsSeparator(t *testing.T) {
	tests := []struct {
		name  string
		sep   string
		paths []string
		want  string
	}{
		{
			name:  "custom separator inside name",
			sep:   "J",
			paths: []string{"/lib/Jackson.jar", "/lib/Jackson.jar"},
			want:  "/lib/Jackson.jar",
		},
		{
			name:  "scheme qualified paths",
			sep:   ":",
			paths: []string{"hdfs://nn:8020/lib/a.jar", "hdfs://nn:8020/lib/b.jar", "hdfs://nn:8020/lib/a.jar", "hdfs://nn:8020/lib/b.jar"},
			want:  "hdfs://nn:8020/lib/a.jar:hdfs://nn:8020/lib/b.jar",
		},
		{
			name:  "middle entry repeated",
			sep:   "J",
			paths: []string{"/a.jar", "/lib/Jackson.jar", "/c.jar", "/lib/Jackson.jar"},
			want:  "/a.jarJ/lib/Jackson.jarJ/c.jar",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := NewMapConfiguration()
			r := NewRegistrar(tt.sep)

			for _, p := range tt.paths {
				r.AddFileToClassPath(conf, p)
			}

			got, _ := conf.Get(KeyClasspathFiles)
			assert.Equal(t, tt.want, got)
			cache, _ := conf.Get(KeyCacheFiles)
			assert.Equal(t, tt.want, cache)
		})
	}
}

func TestAddFileToClassPath_PrefixIsNotDuplicate(t *testing.T) {
	conf := NewMapConfiguration()
	r := Registrar{}

	r.AddFileToClassPath(conf, "/lib/a.jar.bak")
	r.AddFileToClassPath(conf, "/lib/a.jar")

	got, _ := conf.Get(KeyClasspathFiles)
	assert.Equal(t, "/lib/a.jar.bak:/lib/a.jar", got)
}

func TestAddFileToClassPath_AppendsToExisting(t *testing.T) {
	conf := NewMapConfiguration()
	conf.Set(KeyClasspathFiles, "/preset/x.jar")
	r := Registrar{}

	r.AddFileToClassPath(conf, "/lib/a.jar")
	r.AddFileToClassPath(conf, "/preset/x.jar")

	got, _ := conf.Get(KeyClasspathFiles)
	assert.Equal(t, "/preset/x.jar:/lib/a.jar", got)
}

func TestAddCachedFilesToClasspath(t *testing.T) {
	conf := NewMapConfiguration()
	r := Registrar{}
	files := []string{"a", "b", "c"}

	r.AddCachedFilesToClasspath(conf, files)

	symlink, ok := conf.Get(KeyCreateSymlink)
	require.True(t, ok)
	assert.Equal(t, "yes", symlink)

	cache, _ := conf.Get(KeyCacheFiles)
	classpath, _ := conf.Get(KeyClasspathFiles)
	for _, f := range files {
		assert.Contains(t, cache, f)
		assert.Contains(t, classpath, f)
	}
}

func TestAddCachedFilesAndDirectory(t *testing.T) {
	conf := NewMapConfiguration()
	r := Registrar{}

	r.AddCachedFiles(conf, "/env/lib/a.jar", "/env/lib/a.jar")
	r.AddCacheDirectory(conf, "/env/plugins", "plugins")
	r.AddCacheDirectory(conf, "/env/plugins", "plugins")

	assert.Equal(t, []string{"/env/lib/a.jar", "/env/plugins#plugins"}, r.CacheFiles(conf))
	assert.Nil(t, r.ClasspathFiles(conf))
}

func TestMapConfiguration(t *testing.T) {
	var conf MapConfiguration
	_, ok := conf.Get("missing")
	assert.False(t, ok)

	conf.Set("b", "2")
	conf.Set("a", "1")
	assert.Equal(t, []string{"a", "b"}, conf.Keys())

	v, ok := conf.Get("a")
	require.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestMapConfiguration_Concurrent(t *testing.T) {
	conf := NewMapConfiguration()
	r := Registrar{}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conf.Set(fmt.Sprintf("key-%d", i), "v")
			_ = r.CacheFiles(conf)
		}(i)
	}
	wg.Wait()

	assert.Len(t, conf.Keys(), 8)
	for _, k := range conf.Keys() {
		assert.True(t, strings.HasPrefix(k, "key-"))
	}
}
