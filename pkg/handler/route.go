package handler

// Route pattern relative to the mount point of a router
type Route string

const (
	// RouteIndex the root page of a site
	RouteIndex Route = "/"
	// RoutePage any page, .html and .htm variants are redirected
	RoutePage Route = "/*"
	// RouteStatic static assets of a site
	RouteStatic Route = "/static/*"
	// RouteSearch full text search, only mounted when the site has an index
	RouteSearch Route = "/search"
	// RouteSitemapXML machine readable sitemap
	RouteSitemapXML Route = "/sitemap_index.xml"
	// RouteSitemapHTML human readable sitemap
	RouteSitemapHTML Route = "/sitemap.html"
)
