// Package distcache stages a runtime environment into a distributed
// filesystem so that cluster workers can load it through the distributed
// cache.
//
// An installation lives below a root path on a core.DistributedFS:
//
//	<root>/lib/*.jar                          runtime libraries
//	<root>/plugins/big-data-plugin/...        required plugin
//	<root>/plugins/<additional>/...           optional plugins
//	<root>/.lock                              present while unusable
//
// The lock marker is authoritative. IsInstalledAt reports false whenever it
// exists, whatever else is present, so a crash halfway through an install is
// never mistaken for a usable environment. The marker is advisory: two
// installers that check it at the same moment can both proceed. Callers that
// need mutual exclusion must coordinate outside this package.
//
// # Usage
//
//	util, err := distcache.New(billy.NewLocal(),
//	    distcache.WithReplication(10),
//	    distcache.WithPluginBaseFolders("/opt/pentaho/plugins"),
//	)
//	if err != nil {
//	    return err
//	}
//	conf := jobconf.NewMapConfiguration()
//	installed, err := util.EnsureEnvironment(distcache.InstallRequest{
//	    Archive:       "/opt/pentaho/pentaho-mapreduce-libraries.zip",
//	    FS:            dfs,
//	    Destination:   "/opt/pentaho/mapreduce/7.1",
//	    BigDataPlugin: "/opt/pentaho/plugins/big-data-plugin",
//	    Conf:          conf,
//	})
//
// Every staged path receives mode 0755 and the configured replication
// factor. Nothing is retried; failures are returned as errors from the
// envstage errors package with a code describing the cause.
package distcache
