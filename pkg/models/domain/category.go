package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidCategoryMap is returned when a category map is not a partition of service titles
var ErrInvalidCategoryMap = errors.New("invalid category map")

// Category groups cloud service titles for summary reporting
type Category struct {
	Name     string
	Services []string
}

// CategoryMap is an immutable, ordered partition of service titles into categories
type CategoryMap struct {
	categories []Category
	index      map[string]int
}

// NewCategoryMap validates and indexes the given categories.
// A service title listed under two different categories makes the map invalid;
// repeating a title inside the same category is tolerated.
func NewCategoryMap(categories []Category) (CategoryMap, error) {
	cm := CategoryMap{
		categories: make([]Category, 0, len(categories)),
		index:      make(map[string]int),
	}
	names := make(map[string]struct{}, len(categories))

	for i, c := range categories {
		if c.Name == "" {
			return CategoryMap{}, fmt.Errorf("%w: category #%d has no name", ErrInvalidCategoryMap, i+1)
		}
		if _, dup := names[c.Name]; dup {
			return CategoryMap{}, fmt.Errorf("%w: category %q declared twice", ErrInvalidCategoryMap, c.Name)
		}
		names[c.Name] = struct{}{}

		services := make([]string, 0, len(c.Services))
		for _, s := range c.Services {
			if owner, seen := cm.index[s]; seen {
				if owner == i {
					continue
				}
				return CategoryMap{}, fmt.Errorf("%w: service %q belongs to both %q and %q",
					ErrInvalidCategoryMap, s, cm.categories[owner].Name, c.Name)
			}
			cm.index[s] = i
			services = append(services, s)
		}
		cm.categories = append(cm.categories, Category{Name: c.Name, Services: services})
	}

	return cm, nil
}

// MustCategoryMap is NewCategoryMap for static tables known to be valid
func MustCategoryMap(categories []Category) CategoryMap {
	cm, err := NewCategoryMap(categories)
	if err != nil {
		panic(err)
	}
	return cm
}

// Lookup returns the category owning the service title
func (cm CategoryMap) Lookup(service string) (string, bool) {
	i, ok := cm.index[service]
	if !ok {
		return "", false
	}
	return cm.categories[i].Name, true
}

// Names returns category names in map order
func (cm CategoryMap) Names() []string {
	names := make([]string, len(cm.categories))
	for i, c := range cm.categories {
		names[i] = c.Name
	}
	return names
}

// Categories returns a copy of the categories in map order
func (cm CategoryMap) Categories() []Category {
	out := make([]Category, len(cm.categories))
	for i, c := range cm.categories {
		out[i] = Category{Name: c.Name, Services: append([]string(nil), c.Services...)}
	}
	return out
}

// Rank returns the position of a category in the map, or len(categories) for unknown names
func (cm CategoryMap) Rank(name string) int {
	for i, c := range cm.categories {
		if c.Name == name {
			return i
		}
	}
	return len(cm.categories)
}

// Len returns the number of categories
func (cm CategoryMap) Len() int {
	return len(cm.categories)
}

// AWSCategories is the default bucketing of AWS service titles
func AWSCategories() CategoryMap {
	return MustCategoryMap([]Category{
		{Name: "Security and Identity", Services: []string{"IAM", "ACM", "KMS", "GuardDuty", "Secret Manager", "Secret Hub", "SSM"}},
		{Name: "Compute", Services: []string{"Auto Scaling", "EC2", "ECS", "EKS", "Lambda", "EMR", "Step Functions"}},
		{Name: "Storage", Services: []string{"EBS", "ECR", "S3", "DLM", "Backup"}},
		{Name: "Network", Services: []string{"API Gateway", "CloudFront", "Route 53", "VPC", "ELB", "ElasticCache", "CloudTrail"}},
		{Name: "Database", Services: []string{"RDS", "DynamoDB", "Athena", "Glue"}},
		{Name: "Other", Services: []string{"CloudFormation", "CodeDeploy", "Config", "SNS", "SQS", "WorkSpaces", "EventBridge"}},
	})
}

// GCPCategories is the default bucketing of GCP service titles
func GCPCategories() CategoryMap {
	return MustCategoryMap([]Category{
		{Name: "Security and Identity", Services: []string{"IAM", "KMS", "Organization", "Resource Manager"}},
		{Name: "Compute", Services: []string{"Compute", "App Engine", "Cloud Functions", "Cloud Run", "Kubernetes"}},
		{Name: "Storage", Services: []string{"Storage"}},
		{Name: "Network", Services: []string{"DNS"}},
		{Name: "Database", Services: []string{"AlloyDB", "BigQuery", "Dataproc", "SQL"}},
		{Name: "Other", Services: []string{"Logging", "Project"}},
	})
}
