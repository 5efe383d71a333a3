package scene

// DefaultResolution is the tessellation resolution of every shape.
const DefaultResolution = 16

// Mesh describes the size of one tessellated shape.
type Mesh struct {
	Vertices  int
	Triangles int
	Edges     int
}

// ConeMesh returns a capped cone with res side facets. The base polygon
// is fanned into res-2 triangles.
func ConeMesh(res int) Mesh {
	return Mesh{
		Vertices:  res + 1,
		Triangles: res + (res - 2),
		Edges:     2 * res,
	}
}

// SphereMesh returns a UV sphere with theta meridians and phi rings
// including both poles.
func SphereMesh(theta, phi int) Mesh {
	rings := phi - 2

	return Mesh{
		Vertices:  theta*rings + 2,
		Triangles: 2 * theta * rings,
		Edges:     theta*rings + theta*(phi-1),
	}
}

// CylinderMesh returns a capped cylinder with res side facets.
func CylinderMesh(res int) Mesh {
	return Mesh{
		Vertices:  4 * res,
		Triangles: 2*res + 2*(res-2),
		Edges:     3 * res,
	}
}

func meshes(res int) [NumLayers]Mesh {
	return [NumLayers]Mesh{
		LayerCone:     ConeMesh(res),
		LayerSphere:   SphereMesh(res, res),
		LayerCylinder: CylinderMesh(res),
	}
}
