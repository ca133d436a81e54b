package httpapi

// indexHTML is the bundled MapLibre viewer. It requests tiles from the
// service's own /tiles/{z}/{x}/{y}.pbf endpoint and implements the
// client-side debounce contract: the vector layer is removed on pan/zoom
// start and re-added two seconds after the interaction settles, so the
// server only sees tile requests for a resting viewport.
const indexHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Vector Tile Viewer</title>
    <meta name="viewport" content="initial-scale=1,maximum-scale=1,user-scalable=no">
    <script src='https://unpkg.com/maplibre-gl@3.6.2/dist/maplibre-gl.js'></script>
    <link href='https://unpkg.com/maplibre-gl@3.6.2/dist/maplibre-gl.css' rel='stylesheet' />
    <style>
        body { margin: 0; padding: 0; }
        #map { position: absolute; top: 0; bottom: 0; width: 100%; }
    </style>
</head>
<body>
<div id="map"></div>
<script>
    const tileURL = window.location.origin + '/tiles/{z}/{x}/{y}.pbf';

    const map = new maplibregl.Map({
        container: 'map',
        style: {
            version: 8,
            sources: {
                'features': {
                    type: 'vector',
                    tiles: [tileURL]
                },
                'osm': {
                    type: 'raster',
                    tiles: [
                        'https://a.tile.openstreetmap.org/{z}/{x}/{y}.png',
                        'https://b.tile.openstreetmap.org/{z}/{x}/{y}.png',
                        'https://c.tile.openstreetmap.org/{z}/{x}/{y}.png'
                    ],
                    tileSize: 256
                }
            },
            layers: [
                {
                    id: 'background',
                    type: 'background',
                    paint: { 'background-color': '#a0c8f0' }
                },
                {
                    id: 'osm',
                    type: 'raster',
                    source: 'osm'
                },
                {
                    id: 'features-fill',
                    type: 'fill',
                    source: 'features',
                    'source-layer': 'layer',
                    paint: {
                        'fill-color': 'blue',
                        'fill-opacity': 0.6,
                        'fill-outline-color': '#ffffff'
                    }
                },
                {
                    id: 'features-stroke',
                    type: 'line',
                    source: 'features',
                    'source-layer': 'layer',
                    paint: {
                        'line-color': 'black',
                        'line-width': 0.5
                    }
                }
            ]
        },
        center: [5.38327, 52.15660],
        zoom: 12,
        prefetchZoomDelta: 0,
        refreshExpiredTiles: false
    });

    map.addControl(new maplibregl.NavigationControl());

    map.on('click', 'features-fill', (e) => {
        const coordinates = e.lngLat;
        const properties = e.features[0].properties;

        let popupContent = '<h3>Feature Properties</h3>';
        for (const [key, value] of Object.entries(properties)) {
            popupContent += '<p><strong>' + key + ':</strong> ' + value + '</p>';
        }

        new maplibregl.Popup()
            .setLngLat(coordinates)
            .setHTML(popupContent)
            .addTo(map);
    });

    map.on('mouseenter', 'features-fill', () => {
        map.getCanvas().style.cursor = 'pointer';
    });

    map.on('mouseleave', 'features-fill', () => {
        map.getCanvas().style.cursor = '';
    });

    // Throttle tile loading while the user pans or zooms.
    let reloadTimeout;

    function removeFeatureLayers() {
        if (map.getLayer('features-fill')) map.removeLayer('features-fill');
        if (map.getLayer('features-stroke')) map.removeLayer('features-stroke');
        if (map.getSource('features')) map.removeSource('features');
    }

    function addFeatureLayers() {
        if (map.getSource('features')) return;

        map.addSource('features', {
            type: 'vector',
            tiles: [tileURL]
        });

        map.addLayer({
            id: 'features-fill',
            type: 'fill',
            source: 'features',
            'source-layer': 'layer',
            paint: {
                'fill-color': 'blue',
                'fill-opacity': 0.6,
                'fill-outline-color': '#ffffff'
            }
        });

        map.addLayer({
            id: 'features-stroke',
            type: 'line',
            source: 'features',
            'source-layer': 'layer',
            paint: {
                'line-color': 'black',
                'line-width': 0.5
            }
        });
    }

    function onInteractionStart() {
        clearTimeout(reloadTimeout);
        removeFeatureLayers();
    }

    function onInteractionEnd() {
        clearTimeout(reloadTimeout);
        reloadTimeout = setTimeout(() => {
            addFeatureLayers();
        }, 2000);
    }

    map.on('movestart', onInteractionStart);
    map.on('moveend', onInteractionEnd);
    map.on('zoomstart', onInteractionStart);
    map.on('zoomend', onInteractionEnd);
</script>
</body>
</html>
`
