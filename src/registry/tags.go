package registry

// LatestTag is the floating tag pushed alongside the version.
const LatestTag = "latest"

// ComputeTags returns the tags to push, in order: the version first, then
// "latest" when enabled. A version of "latest" is still pushed twice.
func ComputeTags(version string, latest bool) []string {
	tags := []string{version}
	if latest {
		tags = append(tags, LatestTag)
	}
	return tags
}

// RemoteRef is <registryPath>:<tag>.
func RemoteRef(registryPath, tag string) string {
	return registryPath + ":" + tag
}
