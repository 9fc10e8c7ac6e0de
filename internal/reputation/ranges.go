// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

package reputation

// Ranges owned by VPS and cloud providers whose address space is almost
// entirely servers. Broad provider blocks that also carry consumer traffic
// are left to the MaxMind databases.
var defaultDatacenterCIDRs = []string{
	// DigitalOcean
	"64.225.0.0/16", "68.183.0.0/16", "104.131.0.0/16", "134.209.0.0/16",
	"138.68.0.0/16", "139.59.0.0/16", "142.93.0.0/16", "157.245.0.0/16",
	"159.65.0.0/16", "159.89.0.0/16", "161.35.0.0/16", "164.90.0.0/16",
	"165.22.0.0/16", "165.227.0.0/16", "167.71.0.0/16", "167.99.0.0/16",
	"174.138.0.0/16", "178.128.0.0/16", "178.62.0.0/16", "188.166.0.0/16",
	"206.189.0.0/16", "207.154.0.0/16",
	// Linode
	"45.33.0.0/16", "45.56.0.0/16", "45.79.0.0/16", "50.116.0.0/16",
	"139.162.0.0/16", "172.104.0.0/15",
	// Vultr
	"45.32.0.0/16", "45.63.0.0/16", "45.76.0.0/16", "45.77.0.0/16",
	"108.61.0.0/16", "140.82.0.0/16", "144.202.0.0/16", "149.28.0.0/16",
	// Hetzner
	"5.9.0.0/16", "78.46.0.0/15", "88.99.0.0/16", "95.216.0.0/14",
	"116.202.0.0/15", "135.181.0.0/16", "136.243.0.0/16", "138.201.0.0/16",
	"144.76.0.0/16", "148.251.0.0/16", "157.90.0.0/16", "159.69.0.0/16",
	"162.55.0.0/16", "168.119.0.0/16", "176.9.0.0/16", "178.63.0.0/16",
	"188.40.0.0/16", "195.201.0.0/16",
	// OVH
	"51.38.0.0/16", "51.68.0.0/16", "51.75.0.0/16", "51.77.0.0/16",
	"51.79.0.0/16", "51.81.0.0/16", "51.83.0.0/16", "51.89.0.0/16",
	"51.91.0.0/16", "54.36.0.0/16", "54.37.0.0/16", "54.38.0.0/16",
	"137.74.0.0/16", "139.99.0.0/16", "141.94.0.0/16", "144.217.0.0/16",
	"145.239.0.0/16", "147.135.0.0/16", "149.56.0.0/16", "151.80.0.0/16",
	"158.69.0.0/16", "164.132.0.0/16", "167.114.0.0/16", "176.31.0.0/16",
	"178.32.0.0/15", "188.165.0.0/16", "192.99.0.0/16", "193.70.0.0/16",
}

// Lowercase substrings of ASN organization names that identify hosting
// networks.
var defaultHostingKeywords = []string{
	"amazon",
	"google cloud",
	"microsoft",
	"digitalocean",
	"linode",
	"akamai",
	"vultr",
	"choopa",
	"hetzner",
	"ovh",
	"contabo",
	"scaleway",
	"oracle",
	"alibaba",
	"tencent",
	"leaseweb",
	"hosting",
	"datacenter",
	"data center",
}
